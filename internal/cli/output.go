package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.PlayerListResponse:
		o.printPlayerList(v)
	case response.DeleteResponse:
		fmt.Fprintf(o.w, "Deleted %d players\n", v.Deleted)
	case response.HealthResponse:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case IdentityResult:
		o.printIdentity(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// IdentityResult describes the locally stored identity
type IdentityResult struct {
	File     string           `json:"file"`
	PlayerID string           `json:"player_id,omitempty"`
	Stored   bool             `json:"stored"`
	Player   *response.Player `json:"player,omitempty"`
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "Position: %.0f, %.0f\n", p.X, p.Y)
	fmt.Fprintf(o.w, "Color: %s\n", p.Color)
	fmt.Fprintf(o.w, "Last seen: %s\n", p.LastSeen.Format(time.RFC3339))
}

func (o *Output) printPlayerList(l response.PlayerListResponse) {
	if len(l.Players) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	fmt.Fprintf(o.w, "Players (%d):\n", len(l.Players))
	for _, p := range l.Players {
		fmt.Fprintf(o.w, "  - %s (%s) at %.0f, %.0f %s\n", p.Name, p.ID, p.X, p.Y, p.Color)
	}
}

func (o *Output) printIdentity(r IdentityResult) {
	fmt.Fprintf(o.w, "Identity file: %s\n", r.File)
	if !r.Stored {
		fmt.Fprintln(o.w, "No stored identity")
		return
	}
	fmt.Fprintf(o.w, "Player ID: %s\n", r.PlayerID)
	if r.Player == nil {
		fmt.Fprintln(o.w, "Not known to the server")
		return
	}
	fmt.Fprintf(o.w, "Name: %s\n", r.Player.Name)
	fmt.Fprintf(o.w, "Position: %.0f, %.0f\n", r.Player.X, r.Player.Y)
}

// printFeed prints one change-feed frame as a single line
func (o *Output) printFeed(at time.Time, msg response.FeedMessage) {
	if o.format == "json" {
		data, _ := json.Marshal(msg)
		fmt.Fprintln(o.w, string(data))
		return
	}

	timestamp := at.Format("2006-01-02 15:04:05")
	switch {
	case msg.Type == response.FeedSnapshotType:
		names := make([]string, 0, len(msg.Players))
		for _, p := range msg.Players {
			names = append(names, p.Name)
		}
		fmt.Fprintf(o.w, "[%s] snapshot: %d players %s\n", timestamp, len(msg.Players), strings.Join(names, ", "))
	case msg.Player != nil:
		p := msg.Player
		fmt.Fprintf(o.w, "[%s] %s: %s (%s) at %.0f, %.0f\n", timestamp, msg.Type, p.Name, p.ID, p.X, p.Y)
	default:
		fmt.Fprintf(o.w, "[%s] %s\n", timestamp, msg.Type)
	}
}
