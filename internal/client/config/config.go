// Package config handles configuration for the CLI client.
package config

import (
	"flag"
	"os"

	"github.com/matoscout/api/internal/flagx"
)

// Config holds runtime settings for the CLI client.
type Config struct {
	ServerURL string
}

// LoadConfig applies defaults then the -e flag (server base URL).
func LoadConfig() *Config {
	cfg := &Config{ServerURL: "http://localhost:8080"}

	args := flagx.FilterArgs(os.Args[1:], []string{"-e"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerURL, "e", cfg.ServerURL, "server base URL")
	_ = fs.Parse(args)

	return cfg
}
