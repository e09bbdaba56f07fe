package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/multiplayer-demo/internal/api/response"
)

// errWatchDone ends a stream once the frame limit is reached
var errWatchDone = errors.New("watch limit reached")

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var transport string
	var limit int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the player change feed",
		Long: `Follow the server's player feed and print one line per frame.

The first frame is a snapshot of every player; later frames are insert,
update and delete changes. Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			if jsonOutput {
				out = NewOutput("json", cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			seen := 0
			handle := func(msg response.FeedMessage) error {
				out.printFeed(time.Now(), msg)
				seen++
				if limit > 0 && seen >= limit {
					return errWatchDone
				}
				return nil
			}

			var err error
			switch transport {
			case "sse":
				err = watchSSE(ctx, api.EventsURL(), handle)
			case "ws":
				err = watchWS(ctx, api.FeedURL(), handle)
			default:
				return fmt.Errorf("unknown transport %q", transport)
			}

			if errors.Is(err, errWatchDone) || ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output frames as JSON lines")
	cmd.Flags().StringVar(&transport, "transport", "sse", "Feed transport: sse, ws")
	cmd.Flags().IntVar(&limit, "limit", 0, "Exit after this many frames (0 for no limit)")

	return cmd
}

func watchSSE(ctx context.Context, url string, handle func(response.FeedMessage) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for SSE
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			// End of event; comments and keepalives carry no data
			if len(dataLines) == 0 {
				continue
			}
			var msg response.FeedMessage
			if err := json.Unmarshal([]byte(strings.Join(dataLines, "\n")), &msg); err != nil {
				return fmt.Errorf("bad event: %w", err)
			}
			dataLines = nil
			if err := handle(msg); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

func watchWS(ctx context.Context, url string, handle func(response.FeedMessage) error) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var msg response.FeedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		if err := handle(msg); err != nil {
			return err
		}
	}
}
