package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/citrination/internal/config"
	logpkg "github.com/kailas-cloud/citrination/internal/logger"
	"github.com/kailas-cloud/citrination/internal/version"
	citrination "github.com/kailas-cloud/citrination/pkg/sdk"
)

func main() {
	app := newApp(os.Stdin, os.Stdout)
	if err := app.Run(os.Args); err != nil {
		slog.Error("citrination failed", "error", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	return &cli.App{
		Name:    "citrination",
		Usage:   "Search and upload materials data on a Citrination platform",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Platform base URL",
				EnvVars: []string{"CITRINATION_HOST"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Platform API key",
				EnvVars: []string{"CITRINATION_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or TOML config file; flags override its client section",
				EnvVars: []string{"CITRINATION_CONFIG"},
			},
			&cli.IntFlag{
				Name:  "max-query-size",
				Usage: "Maximum hits one search returns",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for a single request",
			},
			&cli.Float64Flag{
				Name:  "rps",
				Usage: "Client-side request rate limit; 0 disables",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress warnings",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Reader:   stdin,
		Writer:   stdout,
		Commands: commands(),
	}
}

// session is a configured SDK client plus the context its calls run in.
type session struct {
	ctx    context.Context
	client *citrination.Client
	out    io.Writer
}

// clientConfig merges the config file's client section with the flags.
func clientConfig(c *cli.Context) (config.ClientConfig, error) {
	var cfg config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return config.ClientConfig{}, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.ApplyDefaults()
	}

	cc := cfg.Client
	if c.IsSet("host") {
		cc.Host = c.String("host")
	}
	if c.IsSet("api-key") {
		cc.APIKey = c.String("api-key")
	}
	if c.IsSet("max-query-size") {
		cc.MaxQuerySize = c.Int("max-query-size")
	}
	if c.IsSet("timeout") {
		cc.TimeoutSec = int(c.Duration("timeout").Seconds())
	}
	if c.IsSet("rps") {
		cc.RequestsPerSecond = c.Float64("rps")
	}
	if c.Bool("quiet") {
		cc.SuppressWarnings = true
	}
	if cc.APIKey == "" {
		return config.ClientConfig{}, errors.New("api key required: set --api-key or CITRINATION_API_KEY")
	}
	return cc, nil
}

func newSession(c *cli.Context) (*session, error) {
	cc, err := clientConfig(c)
	if err != nil {
		return nil, err
	}

	level := "warn"
	slogLevel := slog.LevelWarn
	if c.Bool("debug") {
		level = "debug"
		slogLevel = slog.LevelDebug
	}
	zl, err := logpkg.NewLogger("prod", level)
	if err != nil {
		return nil, err
	}
	sl := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))

	opts := []citrination.Option{
		citrination.WithHost(cc.Host),
		citrination.WithAPIKey(cc.APIKey),
		citrination.WithMaxQuerySize(cc.MaxQuerySize),
		citrination.WithSuppressWarnings(cc.SuppressWarnings),
		citrination.WithLogger(sl),
	}
	if cc.TimeoutSec > 0 {
		opts = append(opts, citrination.WithTimeout(time.Duration(cc.TimeoutSec)*time.Second))
	}
	if cc.RequestsPerSecond > 0 {
		opts = append(opts, citrination.WithRateLimit(cc.RequestsPerSecond, cc.Burst))
	}

	client, err := citrination.New(opts...)
	if err != nil {
		return nil, err
	}

	zl.Debug("client ready", zap.String("host", client.Host()), zap.Int("max_query_size", cc.MaxQuerySize))
	return &session{
		ctx:    logpkg.ContextWithLogger(c.Context, zl),
		client: client,
		out:    c.App.Writer,
	}, nil
}

// print writes v as indented JSON.
func (s *session) print(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput reads the JSON document named by the first argument, or stdin
// when there is none or it is "-".
func readInput(c *cli.Context, out any) error {
	var (
		data []byte
		err  error
	)
	if path := c.Args().First(); path != "" && path != "-" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(c.App.Reader)
	}
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse query: %w", err)
	}
	return nil
}

// parseValue keeps numeric property values numeric.
func parseValue(s string) any {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
