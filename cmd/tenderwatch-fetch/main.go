package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jmespath-community/go-jmespath"
	"github.com/target/tenderwatch/internal/adapters/procurement"
	"github.com/target/tenderwatch/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx     context.Context
	Logger  *slog.Logger
	BaseURL string
	Stdout  io.Writer
	Stderr  io.Writer
}

const defaultFetchTimeout = 30 * time.Second

// errUsage marks argument errors that already printed their own usage.
var errUsage = errors.New("invalid arguments")

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		_, _ = fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:     ctx,
		Logger:  logger,
		BaseURL: cfg.Procurement.APIURL,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		if errors.Is(runErr, errUsage) {
			stop()
			os.Exit(2) //nolint:forbidigo // CLI must exit with usage status on bad flags
		}
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"tenders": {
			name:        "tenders",
			description: "Fetch one page of the tender feed",
			run:         runTenders,
		},
		"tender": {
			name:        "tender",
			description: "Fetch a single tender by id",
			run:         runTender,
		},
	}
}

func printUsage(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Usage: tenderwatch-fetch <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %-10s %s\n", name, commands()[name].description); err != nil {
			return err
		}
	}
	return nil
}

type fetchOptions struct {
	BaseURL string
	Query   string
	Timeout time.Duration
}

type tendersOptions struct {
	fetchOptions
	Limit      int
	Descending bool
}

func (o *fetchOptions) register(fs *flag.FlagSet, baseURL string) {
	fs.StringVar(&o.BaseURL, "url", baseURL, "procurement API base URL")
	fs.StringVar(&o.Query, "query", "", "JMESPath expression applied to the response")
	fs.DurationVar(&o.Timeout, "timeout", defaultFetchTimeout, "request timeout (0 or less uses the default)")
}

func parseFlags(ctx *commandContext, fs *flag.FlagSet, args []string) error {
	fs.SetOutput(ctx.Stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func runTenders(ctx *commandContext, args []string) error {
	var opts tendersOptions
	fs := flag.NewFlagSet("tenders", flag.ContinueOnError)
	opts.register(fs, ctx.BaseURL)
	fs.IntVar(&opts.Limit, "limit", 10, "number of tenders to request")
	fs.BoolVar(&opts.Descending, "descending", true, "newest first")
	if err := parseFlags(ctx, fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		_, _ = fmt.Fprintf(ctx.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return errUsage
	}

	return fetch(ctx, opts.fetchOptions, func(rctx context.Context, c *procurement.Client) (json.RawMessage, error) {
		return c.ListTenders(rctx, procurement.ListOptions{Limit: opts.Limit, Descending: opts.Descending})
	})
}

func runTender(ctx *commandContext, args []string) error {
	var opts fetchOptions
	fs := flag.NewFlagSet("tender", flag.ContinueOnError)
	opts.register(fs, ctx.BaseURL)
	if err := parseFlags(ctx, fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		_, _ = fmt.Fprintln(ctx.Stderr, "usage: tenderwatch-fetch tender [flags] <id>")
		return errUsage
	}
	id := fs.Arg(0)

	return fetch(ctx, opts, func(rctx context.Context, c *procurement.Client) (json.RawMessage, error) {
		return c.GetTender(rctx, id)
	})
}

type fetchFn func(ctx context.Context, c *procurement.Client) (json.RawMessage, error)

func fetch(ctx *commandContext, opts fetchOptions, do fetchFn) error {
	query := strings.TrimSpace(opts.Query)
	if query != "" {
		if _, err := jmespath.Compile(query); err != nil {
			return fmt.Errorf("invalid -query: %w", err)
		}
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}

	client, err := procurement.NewClient(procurement.ClientOptions{BaseURL: opts.BaseURL, Timeout: opts.Timeout})
	if err != nil {
		return err
	}

	rctx, cancel := context.WithTimeout(ctx.Ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := do(rctx, client)
	if err != nil {
		return err
	}
	ctx.Logger.Debug("fetched", "bytes", len(raw), "duration", time.Since(start))

	return writeResult(ctx.Stdout, raw, query)
}

// writeResult prints raw as indented JSON, optionally narrowed by a JMESPath expression.
func writeResult(w io.Writer, raw json.RawMessage, query string) error {
	if query == "" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("format response: %w", err)
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	result, err := jmespath.Search(query, data)
	if err != nil {
		return fmt.Errorf("apply -query: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
