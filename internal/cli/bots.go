package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/multiplayer-demo/internal/client/bot"
	"github.com/mcoot/multiplayer-demo/internal/dependencies/random"
)

func newBotsCmd() *cobra.Command {
	defaults := bot.DefaultConfig()
	botCfg := defaults
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "bots",
		Short: "Fill the shared space with randomly wandering players",
		Long: `Join one or more bots that wander the shared space until interrupted.
Bots use fresh identities and never touch the stored identity file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			logger := cfg.Logger(cmd.ErrOrStderr())
			runner := bot.NewRunner(api, botCfg, random.New(), logger)
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage(fmt.Sprintf("Starting %d bot(s)", botCfg.Count))
			if err := runner.Run(ctx); err != nil {
				return err
			}
			logger.Debug("bots stopped", slog.Int("count", botCfg.Count))
			return nil
		},
	}

	cmd.Flags().IntVar(&botCfg.Count, "count", defaults.Count, "Number of bots to run")
	cmd.Flags().StringVar(&botCfg.NamePrefix, "name-prefix", defaults.NamePrefix, "Bot names are the prefix plus a number")
	cmd.Flags().DurationVar(&botCfg.Step, "step", defaults.Step, "How long each bot holds a direction")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")

	return cmd
}
