package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/multiplayer-demo/internal/api/response"
	"github.com/mcoot/multiplayer-demo/internal/model"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect or forget the stored player identity",
	}

	cmd.AddCommand(newIdentityShowCmd())
	cmd.AddCommand(newIdentityForgetCmd())

	return cmd
}

func newIdentityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored identity and whether the server still knows it",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cfg.IdentityStore()
			id, ok, err := store.Load()
			if err != nil {
				return err
			}

			result := IdentityResult{File: store.Path(), Stored: ok, PlayerID: string(id)}
			if ok {
				p, err := api.GetPlayer(cmd.Context(), id)
				switch {
				case err == nil:
					rp := response.PlayerFromModel(p)
					result.Player = &rp
				case !errors.Is(err, model.ErrPlayerNotFound):
					return err
				}
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newIdentityForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Delete the stored identity; the next play creates a new player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.IdentityStore().Clear(); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Identity forgotten")
			return nil
		},
	}
}
