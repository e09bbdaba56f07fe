package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/mcoot/multiplayer-demo/internal/client"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	IdentityFile string
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("DEMO_SERVER", "http://localhost:8080"),
		IdentityFile: getEnvOrDefault("DEMO_IDENTITY_FILE", client.DefaultIdentityFile()),
		Output:       "text",
		Verbose:      false,
	}
}

// IdentityStore returns the store backing the local player identity
func (c *Config) IdentityStore() *client.FileIdentityStore {
	return client.NewFileIdentityStore(c.IdentityFile)
}

// Logger returns a text logger writing to w, at debug level when verbose
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
