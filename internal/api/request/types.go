package request

// CreatePlayerRequest is the request body for creating a player
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// UpdatePositionRequest is the request body for moving a player
type UpdatePositionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}
