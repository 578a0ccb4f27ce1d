package main

import (
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/naoina/toml"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/Query-farm/vgi-xmlrpc/xmlrpc"
)

// DefaultConfig creates a default config
func DefaultConfig() *Config {
	return &Config{
		Server: Server{
			ListenAddress:    "127.0.0.1",
			ListenPort:       8080,
			Path:             "/RPC2",
			Name:             "xmlrpcd",
			MaxBodySize:      xmlrpc.DefaultMaxBodySize,
			CompressionLevel: gzip.DefaultCompression,
			Pages:            true,
			ShutdownTimeout:  10,
			RateBurst:        50,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		CORS: CORS{
			Enabled:        false,
			AllowedOrigins: []string{"*"},
		},
	}
}

// LoadTomlConfig decodes the TOML file at path over cfg.
func LoadTomlConfig(path string, cfg *Config) error {
	fh, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer fh.Close()
	if err := toml.NewDecoder(fh).Decode(cfg); err != nil {
		return errors.Wrapf(err, "decode config %s", path)
	}
	return nil
}

// ApplyFlags overrides cfg with every flag set on the command line.
func ApplyFlags(ctx *cli.Context, cfg *Config) {
	// Server
	if ctx.IsSet(ListenAddressFlag.Name) {
		cfg.Server.ListenAddress = ctx.String(ListenAddressFlag.Name)
	}
	if ctx.IsSet(ListenPortFlag.Name) {
		cfg.Server.ListenPort = ctx.Int(ListenPortFlag.Name)
	}
	if ctx.IsSet(PathFlag.Name) {
		cfg.Server.Path = ctx.String(PathFlag.Name)
	}
	if ctx.IsSet(NameFlag.Name) {
		cfg.Server.Name = ctx.String(NameFlag.Name)
	}
	if ctx.IsSet(MaxBodySizeFlag.Name) {
		cfg.Server.MaxBodySize = ctx.Int64(MaxBodySizeFlag.Name)
	}
	if ctx.IsSet(CompressionLevelFlag.Name) {
		cfg.Server.CompressionLevel = ctx.Int(CompressionLevelFlag.Name)
	}
	if ctx.IsSet(NoPagesFlag.Name) {
		cfg.Server.Pages = !ctx.Bool(NoPagesFlag.Name)
	}
	if ctx.IsSet(RateLimitFlag.Name) {
		cfg.Server.RateLimit = ctx.Float64(RateLimitFlag.Name)
	}
	if ctx.IsSet(RateBurstFlag.Name) {
		cfg.Server.RateBurst = ctx.Int(RateBurstFlag.Name)
	}

	// Log
	if ctx.IsSet(LogLevelFlag.Name) {
		cfg.Log.Level = ctx.String(LogLevelFlag.Name)
	}
	if ctx.IsSet(LogFormatFlag.Name) {
		cfg.Log.Format = ctx.String(LogFormatFlag.Name)
	}

	// CORS
	if ctx.IsSet(CORSFlag.Name) {
		cfg.CORS.Enabled = ctx.Bool(CORSFlag.Name)
	}
	if ctx.IsSet(CORSOriginsFlag.Name) {
		cfg.CORS.AllowedOrigins = strings.Split(ctx.String(CORSOriginsFlag.Name), ",")
	}

	// Otel
	if ctx.IsSet(OtelStdoutFlag.Name) {
		cfg.Otel.Stdout = ctx.Bool(OtelStdoutFlag.Name)
	}
}

// Validate reports the first invalid setting in cfg.
func (cfg *Config) Validate() error {
	if cfg.Server.ListenPort < 0 || cfg.Server.ListenPort > 65535 {
		return errors.Errorf("listen_port %d out of range", cfg.Server.ListenPort)
	}
	if !strings.HasPrefix(cfg.Server.Path, "/") {
		return errors.Errorf("path %q must start with /", cfg.Server.Path)
	}
	if cfg.Server.MaxBodySize <= 0 {
		return errors.Errorf("max_body_size must be positive, got %d", cfg.Server.MaxBodySize)
	}
	if l := cfg.Server.CompressionLevel; l < gzip.StatelessCompression || l > gzip.BestCompression {
		return errors.Errorf("compression_level %d out of range", l)
	}
	if cfg.Server.RateLimit < 0 {
		return errors.Errorf("rate_limit must not be negative, got %g", cfg.Server.RateLimit)
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst < 1 {
		return errors.Errorf("rate_burst must be at least 1 when rate_limit is set, got %d", cfg.Server.RateBurst)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log format %q is not text or json", cfg.Log.Format)
	}
	return nil
}

// GetConfig builds the configuration: defaults, then the TOML file named by
// --config, then command-line flags.
func GetConfig(ctx *cli.Context) (*Config, error) {
	cfg := DefaultConfig()

	if confFile := ctx.String(ConfigFlag.Name); confFile != "" {
		if err := LoadTomlConfig(confFile, cfg); err != nil {
			return nil, err
		}
	}

	ApplyFlags(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
