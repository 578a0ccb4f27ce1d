package main

import "github.com/urfave/cli"

var (
	ConfigFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}

	ListenAddressFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "HTTP listen address",
	}

	ListenPortFlag = cli.IntFlag{
		Name:  "port",
		Usage: "HTTP listen port",
	}

	PathFlag = cli.StringFlag{
		Name:  "path",
		Usage: "URL path of the XML-RPC endpoint",
	}

	NameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "Route name used in logs and the API page",
	}

	MaxBodySizeFlag = cli.Int64Flag{
		Name:  "max-body-size",
		Usage: "Maximum decoded request body in bytes",
	}

	CompressionLevelFlag = cli.IntFlag{
		Name:  "compression-level",
		Usage: "gzip level for responses, 0 disables compression",
	}

	NoPagesFlag = cli.BoolFlag{
		Name:  "no-pages",
		Usage: "Disable the HTML API page served on GET",
	}

	RateLimitFlag = cli.Float64Flag{
		Name:  "rate-limit",
		Usage: "Sustained XML-RPC calls per second, 0 disables limiting",
	}

	RateBurstFlag = cli.IntFlag{
		Name:  "rate-burst",
		Usage: "Calls allowed in a burst above the rate limit",
	}

	LogLevelFlag = cli.StringFlag{
		Name:  "loglevel",
		Usage: "Logging level (trace, debug, info, warn, error)",
	}

	LogFormatFlag = cli.StringFlag{
		Name:  "logformat",
		Usage: "Log format (text or json)",
	}

	CORSFlag = cli.BoolFlag{
		Name:  "cors",
		Usage: "Enable CORS",
	}

	CORSOriginsFlag = cli.StringFlag{
		Name:  "cors-origins",
		Usage: "Comma separated list of allowed CORS origins",
	}

	OtelStdoutFlag = cli.BoolFlag{
		Name:  "otel-stdout",
		Usage: "Export traces and metrics to stdout",
	}

	AppFlags = []cli.Flag{
		ConfigFlag,
		ListenAddressFlag,
		ListenPortFlag,
		PathFlag,
		NameFlag,
		MaxBodySizeFlag,
		CompressionLevelFlag,
		NoPagesFlag,
		RateLimitFlag,
		RateBurstFlag,
		LogLevelFlag,
		LogFormatFlag,
		CORSFlag,
		CORSOriginsFlag,
		OtelStdoutFlag,
	}
)
