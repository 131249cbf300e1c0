package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/arnodel/jsonlive/internal/format"
	"github.com/arnodel/jsonlive/store"
	"github.com/arnodel/jsonlive/transport"
	"github.com/arnodel/jsonlive/value"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
		}
	}()

	log.SetFlags(0)
	log.SetPrefix("pj: ")

	// Parse the command line arguments
	opts := defaultOptions()
	var configPath string
	var headers [][2]string

	flag.Usage = printUsage
	flag.StringVar(&configPath, "config", "", "YAML file with default options")
	flag.Func("header", "add a request header 'Name: value' (can be repeated)", func(s string) error {
		name, val, err := parseHeader(s)
		if err != nil {
			return err
		}
		headers = append(headers, [2]string{name, val})
		return nil
	})
	flag.StringVar(&opts.Method, "method", opts.Method, "HTTP method")
	flag.IntVar(&opts.Retries, "retries", opts.Retries, "max consecutive reconnection attempts")
	flag.StringVar(&opts.Backoff, "backoff", opts.Backoff, "delay before the first reconnection attempt")
	flag.BoolVar(&opts.Final, "final", opts.Final, "only print the complete document")
	flag.StringVar(&opts.Query, "query", opts.Query, "JSONPath query applied to each snapshot")
	flag.StringVar(&opts.Color, "color", opts.Color, "colorize output: auto, always, never")
	flag.IntVar(&opts.Indent, "indent", opts.Indent, "indentation level, -1 for one line per snapshot")
	flag.Parse()

	// Options from the config file, overridden by flags on the command line
	if configPath != "" {
		cfg, err := loadConfig(configPath, defaultOptions())
		if err != nil {
			fatalError("%s\n", err)
		}
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "method":
				cfg.Method = opts.Method
			case "retries":
				cfg.Retries = opts.Retries
			case "backoff":
				cfg.Backoff = opts.Backoff
			case "final":
				cfg.Final = opts.Final
			case "query":
				cfg.Query = opts.Query
			case "color":
				cfg.Color = opts.Color
			case "indent":
				cfg.Indent = opts.Indent
			}
		})
		opts = cfg
	}
	for _, h := range headers {
		opts.Headers[h[0]] = h[1]
	}
	switch flag.NArg() {
	case 0:
		if opts.URL == "" {
			opts.URL = "-"
		}
	case 1:
		opts.URL = flag.Arg(0)
	default:
		fatalError("too many arguments, expected one URL, FILE or -\n")
	}

	backoff, err := opts.backoff()
	if err != nil {
		fatalError("%s\n", err)
	}

	// Handle color mode
	var colorizer *format.Colorizer
	switch opts.Color {
	case "always":
		colorizer = &defaultColorizer
	case "never":
	case "auto":
		if isatty.IsTerminal(os.Stdout.Fd()) {
			colorizer = &defaultColorizer
		}
	default:
		fatalError("invalid -color value: %q (use auto, always, or never)\n", opts.Color)
	}

	// Set up stdout for handling colors
	var stdout io.Writer = os.Stdout
	if colorizer != nil {
		stdout = colorable.NewColorableStdout()
	}
	out := bufio.NewWriter(stdout)
	defer out.Flush()

	encoder := &format.Encoder{
		Printer: &format.DefaultPrinter{
			Writer:     out,
			IndentSize: opts.Indent,
			Flusher:    out,
		},
		Colorizer:             colorizer,
		CompactWidthLimit:     60,
		CompactObjectMaxItems: 2,
	}

	sessionOpts := []transport.SessionOption{transport.WithMethod(opts.Method)}
	for name, val := range opts.Headers {
		sessionOpts = append(sessionOpts, transport.WithHeader(name, val))
	}
	session := transport.NewSession(opts.URL, sessionOpts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s := store.New(session, store.WithMaxRetries(opts.Retries), store.WithBackoff(backoff))
	s.OnError(func(err error) {
		log.Printf("%s", err)
	})

	v := &viewer{store: s, encoder: encoder, query: opts.Query, final: opts.Final, stop: cancel}
	s.Subscribe(v)

	if err := s.Start(ctx); err != nil {
		fatalError("%s\n", err)
	}
	<-s.Done()

	if v.err == nil && opts.Final {
		v.printFinal()
	}
	if v.err != nil {
		if errors.Is(v.err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return
		}
		fatalError("error: %s\n", v.err)
	}
	if err := s.Err(); err != nil && !errors.Is(err, context.Canceled) {
		out.Flush()
		fatalError("error: %s\n", err)
	}
}

// A viewer prints the document each time it changes, or only once it is
// complete with -final.
type viewer struct {
	store   *store.Store
	encoder *format.Encoder
	query   string
	final   bool
	stop    func()

	lastResults []any
	err         error
}

var _ store.Subscriber = &viewer{}

func (v *viewer) Notify() {
	if v.err != nil {
		return
	}
	if v.query == "" {
		if !v.final {
			v.print(v.store.Snapshot())
		}
		return
	}
	results, err := v.store.Query(v.query)
	if err != nil {
		v.fail(err)
		return
	}
	if v.final {
		v.lastResults = results
		return
	}
	v.printResults(results)
}

func (v *viewer) printFinal() {
	if v.query != "" {
		v.printResults(v.lastResults)
		return
	}
	if final, ended := v.store.Final(); ended {
		v.print(final)
	}
}

func (v *viewer) printResults(results []any) {
	for _, r := range results {
		x, err := value.FromGo(r)
		if err != nil {
			v.fail(err)
			return
		}
		v.print(x)
	}
}

func (v *viewer) print(x value.Value) {
	if v.err != nil {
		return
	}
	if err := v.encoder.Encode(x); err != nil {
		v.fail(err)
	}
}

func (v *viewer) fail(err error) {
	v.err = err
	v.stop()
}

func fatalError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg, args...)
	os.Exit(1)
}

// Some color ANSI codes
var (
	Reset = []byte("\033[0m")

	Yellow   = []byte("\033[33m")
	Green    = []byte("\033[32m")
	White    = []byte("\033[37m")
	DimWhite = []byte("\033[37;2m")

	BrightBlue = []byte("\033[34;1m")
)

var defaultColorizer = format.Colorizer{
	ScalarColorCodes: [4][]byte{DimWhite, Yellow, White, Green},
	KeyColorCode:     BrightBlue,
	ResetCode:        Reset,
}

func printUsage() {
	fmt.Fprint(os.Stderr, `pj - live view of a streamed JSON document

USAGE:
  pj [options] URL|FILE|-

DESCRIPTION:
  pj reads a JSON document from a URL (http, https, ws, wss), a file or
  stdin and prints the document as it stands each time it grows, so the
  output shows the document being built.  Use -final to only print the
  complete document.

  If the connection fails while the document is streaming, pj reconnects
  and starts over, waiting longer after each consecutive failure.

OPTIONS:
  -config FILE      YAML file providing any of the options below, as well
                    as 'url' and 'headers' (a map); flags take precedence
  -header 'N: V'    Add a request header (can be repeated)
  -method M         HTTP method (default: GET)
  -retries N        Max consecutive reconnection attempts (default: 3)
  -backoff D        Delay before the first reconnection (default: 500ms)
  -final            Only print the complete document
  -query '$...'     Print the JSONPath query results instead of the document
  -color MODE       Control color output (default: auto)
                    Modes: auto, always, never
  -indent N         Indentation level (default: 2, -1 for one line)

EXAMPLES:
  # Watch a slow API response being built
  pj https://api.example.com/report

  # Follow the names of users as they arrive, one line each
  pj -indent -1 -query '$.users[*].name' https://api.example.com/users

  # Read from a websocket with an auth header
  pj -header 'Authorization: Bearer xyz' wss://example.com/feed
`)
}
