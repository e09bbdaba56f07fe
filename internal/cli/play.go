package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/multiplayer-demo/internal/client"
	"github.com/mcoot/multiplayer-demo/internal/client/terminal"
)

type playOptions struct {
	name        string
	noClamp     bool
	noReconcile bool
	retry       bool
	speed       float64
	logFile     string
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join the shared space and move with the arrow keys",
		Long: `Join the shared space as the stored player (creating one on first run) and
move with the arrow keys or WASD. Other players are drawn at the positions
the server reports; you are drawn as '@' at your predicted position.

Press q or Ctrl+C to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	defaults := client.DefaultMotionConfig()
	cmd.Flags().StringVar(&opts.name, "name", "", "Display name used if a new player is created")
	cmd.Flags().BoolVar(&opts.noClamp, "no-clamp", false, "Allow moving outside the playable area")
	cmd.Flags().BoolVar(&opts.noReconcile, "no-reconcile", false, "Reuse the stored identity without checking it still exists")
	cmd.Flags().BoolVar(&opts.retry, "retry", false, "Retry failed position updates with backoff")
	cmd.Flags().Float64Var(&opts.speed, "speed", defaults.Speed, "Movement per frame per held key")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file while playing")

	return cmd
}

func runPlay(cmd *cobra.Command, opts playOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := cmd.InOrStdin()
	stdinFile, isFile := stdin.(*os.File)
	interactive := isFile && terminal.IsTerminal(stdinFile.Fd())
	logger, closeLog, err := playLogger(cmd, opts.logFile, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	session := client.NewSessionManager(api, cfg.IdentityStore(), client.SessionConfig{
		Name:      opts.name,
		Reconcile: !opts.noReconcile,
	}, logger)
	id, err := session.AcquireIdentity(ctx)
	if err != nil {
		return err
	}
	logger.Info("playing", slog.String("player_id", string(id)))

	if interactive {
		restore, err := terminal.MakeRaw(stdinFile.Fd())
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer func() {
			if err := restore(); err != nil {
				logger.Warn("failed to restore terminal", slog.Any("error", err))
			}
		}()
	}

	var sender client.PositionSender
	reporter := client.NewLogReporter(logger)
	if opts.retry {
		sender = client.NewRetrySender(api, client.DefaultRetryConfig(), reporter)
	} else {
		sender = client.NewBestEffortSender(api, reporter)
	}
	defer sender.Close()

	loopCfg := client.DefaultLoopConfig()
	loopCfg.Motion.Clamp = !opts.noClamp
	loopCfg.Motion.Speed = opts.speed

	roster := client.NewRoster()
	feed := client.NewFeedSubscriber(api.FeedURL(), roster, client.DefaultFeedConfig(), logger)
	input := terminal.NewInput(stdin, terminal.DefaultInputConfig(), logger)
	renderer := terminal.NewRenderer(cmd.OutOrStdout(), terminal.DefaultRendererConfig())
	loop := client.NewLoop(loopCfg, session, roster, input, sender, renderer, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feed.Run(gctx)
	})

	if err := loop.Start(gctx); err != nil {
		stop()
		_ = g.Wait()
		return err
	}
	g.Go(func() error {
		select {
		case <-loop.Done():
		case <-gctx.Done():
			loop.Stop()
		}
		// Leaving the loop ends the session
		stop()
		return nil
	})

	return g.Wait()
}

// playLogger keeps logs off the screen while the game is drawn on it
func playLogger(cmd *cobra.Command, path string, interactive bool) (*slog.Logger, func(), error) {
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return cfg.Logger(f), func() { _ = f.Close() }, nil
	case interactive:
		return cfg.Logger(io.Discard), func() {}, nil
	default:
		return cfg.Logger(cmd.ErrOrStderr()), func() {}, nil
	}
}
