// Command stateinsight analyzes the state transitions of a Cardano script address.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goodnatureofminers/stateinsight7000/internal/cardano/model"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type options struct {
	Config  string `long:"config" env:"STATEINSIGHT_CONFIG" no-ini:"true" description:"INI configuration file"`
	Network string `long:"network" env:"STATEINSIGHT_NETWORK" default:"preprod" choice:"mainnet" choice:"preprod" choice:"preview" choice:"testnet" description:"Cardano network"`
	Source  string `long:"source" env:"STATEINSIGHT_SOURCE" default:"mock" choice:"mock" choice:"blockfrost" choice:"cborfile" description:"transaction source"`
	CBOR    string `long:"cbor-file" env:"STATEINSIGHT_CBOR_FILE" description:"transaction dump read by the cborfile source"`

	Blockfrost struct {
		APIKey     string        `long:"blockfrost-api-key" env:"BLOCKFROST_API_KEY" description:"Blockfrost project id"`
		BaseURL    string        `long:"blockfrost-url" env:"BLOCKFROST_URL" description:"override the per-network API endpoint"`
		RPS        int           `long:"blockfrost-rps" default:"10" description:"request rate limit"`
		MaxRetries int           `long:"blockfrost-max-retries" default:"3" description:"retries for throttled or failed requests"`
		RetryDelay time.Duration `long:"blockfrost-retry-delay" default:"1s" description:"base delay between retries"`
		Timeout    time.Duration `long:"blockfrost-timeout" default:"30s" description:"HTTP timeout"`
	} `group:"Blockfrost"`

	Cache struct {
		Dir      string        `long:"cache-dir" env:"STATEINSIGHT_CACHE_DIR" description:"response cache directory (default: user cache dir)"`
		TTL      time.Duration `long:"cache-ttl" default:"1h" description:"response cache lifetime"`
		Disabled bool          `long:"no-cache" description:"bypass the response cache"`
	} `group:"Cache"`

	LogJSON       bool   `long:"log-json" env:"STATEINSIGHT_LOG_JSON" description:"production JSON logging"`
	MetricsAddr   string `long:"metrics-addr" env:"STATEINSIGHT_METRICS_ADDR" description:"serve prometheus metrics on this address"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"STATEINSIGHT_CLICKHOUSE_DSN" description:"ClickHouse DSN for stored runs"`
}

func (o *options) network() model.Network {
	n, err := model.ParseNetwork(o.Network)
	if err != nil {
		return model.Preprod
	}
	return n
}

type app struct {
	opts   options
	logger *zap.Logger
	out    io.Writer
	ctx    context.Context
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, ctx: ctx, logger: zap.NewNop()}
	parser := newParser(a)
	if path := configPath(os.Args[1:]); path != "" {
		if err := flags.NewIniParser(parser).ParseFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "read config %s: %v\n", path, err)
			os.Exit(2)
		}
	}

	_, err := parser.Parse()
	_ = a.logger.Sync()
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) {
			if ferr.Type == flags.ErrHelp {
				return
			}
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newParser(a *app) *flags.Parser {
	parser := flags.NewParser(&a.opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		logger, err := newLogger(a.opts.LogJSON)
		if err != nil {
			return err
		}
		a.logger = logger
		if err := cmd.Execute(args); err != nil {
			a.logger.Error("command failed", zap.Error(err))
			return err
		}
		return nil
	}

	mustAdd(parser, "analyze", "Analyze the transactions of a script address", &analyzeCommand{app: a})
	mustAdd(parser, "watch", "Follow an address and refresh the analysis", &watchCommand{app: a})
	mustAdd(parser, "serve", "Follow an address and serve the analysis over HTTP", &serveCommand{app: a})
	mustAdd(parser, "show", "Render a stored analysis run", &showCommand{app: a})
	mustAdd(parser, "schema-validate", "Check a contract schema file", &schemaValidateCommand{app: a})
	return parser
}

func mustAdd(p *flags.Parser, name, short string, cmd any) {
	if _, err := p.AddCommand(name, short, "", cmd); err != nil {
		panic(fmt.Sprintf("register command %s: %v", name, err))
	}
}

func newLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// configPath finds --config before the parser runs so the INI file can seed defaults.
func configPath(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return os.Getenv("STATEINSIGHT_CONFIG")
}
