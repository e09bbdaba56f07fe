package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/multiplayer-demo/internal/api/apierr"
	"github.com/mcoot/multiplayer-demo/internal/api/response"
)

// ServeSSE streams the player feed as server-sent events. The first event is
// "snapshot"; each later event is named after its change type.
func ServeSSE(w http.ResponseWriter, r *http.Request, sub Subscriber, logger *slog.Logger) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	snapshot, client, err := sub.Subscribe(r.Context(), TransportSSE)
	if err != nil {
		logger.Error("failed to subscribe", slog.Any("error", err))
		apierr.WriteError(w, err)
		return
	}
	defer sub.Unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	msg, err := formatFeedEvent(response.SnapshotMessage(snapshot, time.Now()))
	if err != nil {
		logger.Error("failed to encode snapshot", slog.Any("error", err))
		return
	}
	if _, err := w.Write(msg); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.Events():
			if !ok {
				// Hub closed the channel
				return
			}
			msg, err := formatFeedEvent(response.EventMessage(event))
			if err != nil {
				logger.Warn("failed to encode event", slog.Any("error", err))
				continue
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func formatFeedEvent(msg response.FeedMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(msg.Type, string(data)), nil
}

// formatSSEMessage formats an SSE message with event name and data.
// Multi-line data gets a "data: " prefix on each line.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	var lines []string
	var current strings.Builder
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current.String())
			current.Reset()
		} else if r != '\r' {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}
