package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/multiplayer-demo/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := api.Health(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(response.HealthResponse{Status: status})
			return nil
		},
	}
}
