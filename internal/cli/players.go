package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/multiplayer-demo/internal/api/response"
	"github.com/mcoot/multiplayer-demo/internal/model"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayersCreateCmd())
	cmd.AddCommand(newPlayersListCmd())
	cmd.AddCommand(newPlayersGetCmd())
	cmd.AddCommand(newPlayersMoveCmd())
	cmd.AddCommand(newPlayersResetCmd())

	return cmd
}

func newPlayersCreateCmd() *cobra.Command {
	var name string
	var adopt bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a player at a random position",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := api.CreatePlayer(cmd.Context(), name)
			if err != nil {
				return err
			}

			if adopt {
				if err := cfg.IdentityStore().Save(p.ID); err != nil {
					return fmt.Errorf("failed to save identity: %w", err)
				}
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(response.PlayerFromModel(p))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (default \"Anonymous\")")
	cmd.Flags().BoolVar(&adopt, "adopt", false, "Store the new player as the local identity")

	return cmd
}

func newPlayersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every player",
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := api.ListPlayers(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(response.PlayerListResponse{Players: response.PlayersFromModel(players)})
			return nil
		},
	}
}

func newPlayersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := api.GetPlayer(cmd.Context(), model.PlayerID(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(response.PlayerFromModel(p))
			return nil
		},
	}
}

func newPlayersMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Set a player's position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid y: %w", err)
			}

			if err := api.UpdatePlayerPosition(cmd.Context(), model.PlayerID(args[0]), x, y); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Moved %s to %.0f, %.0f", args[0], x, y))
			return nil
		},
	}
}

func newPlayersResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every player",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := api.DeleteAllPlayers(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(response.DeleteResponse{Deleted: n})
			return nil
		},
	}
}
