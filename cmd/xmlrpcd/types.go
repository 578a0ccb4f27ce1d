package main

// Config is the full daemon configuration.
type Config struct {
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
	CORS   CORS   `toml:"cors"`
	Otel   Otel   `toml:"otel"`
}

// Server
type Server struct {
	ListenAddress    string `toml:"listen_address"`
	ListenPort       int    `toml:"listen_port"`
	Path             string `toml:"path"`
	Name             string `toml:"name"`
	MaxBodySize      int64  `toml:"max_body_size"`
	CompressionLevel int    `toml:"compression_level"`
	Pages            bool   `toml:"pages"`
	ShutdownTimeout  int    `toml:"shutdown_timeout"`

	// RateLimit is the sustained calls per second; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

// Log
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// CORS
type CORS struct {
	Enabled        bool     `toml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Otel
type Otel struct {
	Stdout bool `toml:"stdout"`
}
