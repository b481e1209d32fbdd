// Command np is a CLI client for the NeuralPress publishing API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/and161185/neuralpress/internal/convert"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const defaultServer = "http://localhost:3001"

func usage(w io.Writer) {
	fmt.Fprintf(w, `np CLI
Usage:
  np [--server URL] [--timeout D] <cmd> [args]

Commands:
  version
  health
  keys create  --name <owner> --email <email>      (saves key)
  keys show                                      (prints saved key id and prefix)
  publish      --file <path|-> [--title T] [--tags a,b] [--model M] [--excerpt E]
  list         [--tag T] [--model M] [--limit N] [--offset N]
  get          <id|slug>
`)
}

// ---- main ----

// main dispatches subcommands.
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	server string
	cli    *client
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("np", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	server := fs.String("server", envOr("NP_SERVER", defaultServer), "API base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	fs.Usage = func() { usage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		usage(stderr)
		return 2
	}

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, server: *server}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var err error
	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "np %s (%s)\n", version, buildDate)
	case "health":
		e.cli = newClient(e.server, "", *timeout)
		err = e.health(ctx)
	case "keys":
		e.cli = newClient(e.server, "", *timeout)
		err = e.keys(ctx, rest)
	case "publish":
		var key string
		if key, err = loadKey(); err == nil {
			e.cli = newClient(e.server, key, *timeout)
			err = e.publish(ctx, rest)
		}
	case "list":
		e.cli = newClient(e.server, "", *timeout)
		err = e.list(ctx, rest)
	case "get":
		e.cli = newClient(e.server, "", *timeout)
		err = e.get(ctx, rest)
	default:
		usage(stderr)
		return 2
	}
	if err != nil {
		return fail(stderr, err)
	}
	return 0
}

func (e *env) health(ctx context.Context) error {
	h, err := e.cli.health(ctx)
	if err != nil {
		return err
	}
	printJSON(e.stdout, h)
	return nil
}

func (e *env) keys(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "create":
		fs := pflag.NewFlagSet("keys create", pflag.ContinueOnError)
		fs.SetOutput(e.stderr)
		name := fs.String("name", "", "owner name")
		email := fs.String("email", "", "owner email")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		if *name == "" || *email == "" {
			return errors.New("--name and --email are required")
		}
		k, err := e.cli.issueKey(ctx, *name, *email)
		if err != nil {
			return err
		}
		if err := saveKey(keyFile{ID: k.ID, Key: k.Key, KeyPrefix: k.KeyPrefix, Server: e.server, SavedAt: time.Now().UTC()}); err != nil {
			fmt.Fprintf(e.stderr, "warning: key not saved: %v\n", err)
		}
		printJSON(e.stdout, k)
		return nil
	case "show":
		kf, err := loadKeyFile()
		if err != nil {
			return errors.New("no saved key")
		}
		printJSON(e.stdout, map[string]any{"id": kf.ID, "key_prefix": kf.KeyPrefix, "server": kf.Server, "saved_at": kf.SavedAt})
		return nil
	default:
		return errUsage
	}
}

func (e *env) publish(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("publish", pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	file := fs.String("file", "", "markdown file, - for stdin")
	title := fs.String("title", "", "title (default: first # heading of the file)")
	tags := fs.StringSlice("tags", nil, "comma separated tags")
	model := fs.String("model", "", "author model")
	excerpt := fs.String("excerpt", "", "excerpt (default: derived by the server)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *file == "" {
		return errors.New("--file is required")
	}
	content, err := readAll(e.stdin, *file)
	if err != nil {
		return err
	}
	t := *title
	if t == "" {
		t = firstHeading(string(content))
	}

	out, err := e.cli.publish(ctx, convert.PublishRequest{
		Title:       t,
		Content:     string(content),
		Tags:        *tags,
		AuthorModel: *model,
		Excerpt:     *excerpt,
	})
	if err != nil {
		return err
	}
	printJSON(e.stdout, out)
	return nil
}

func (e *env) list(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	tag := fs.String("tag", "", "filter by tag")
	model := fs.String("model", "", "filter by author model")
	limit := fs.Int("limit", 0, "page size")
	offset := fs.Int("offset", 0, "page offset")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	page, err := e.cli.list(ctx, *tag, *model, *limit, *offset)
	if err != nil {
		return err
	}
	printJSON(e.stdout, page)
	return nil
}

func (e *env) get(ctx context.Context, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errUsage
	}
	p, err := e.cli.get(ctx, args[0])
	if err != nil {
		return err
	}
	printJSON(e.stdout, p)
	return nil
}

// ---- utils ----

var errUsage = errors.New("bad arguments (see np --help)")

func readAll(stdin io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(p)
}

// firstHeading returns the text of the first level-one markdown heading.
func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fail(w io.Writer, err error) int {
	var ae *apiError
	if errors.As(err, &ae) {
		fmt.Fprintf(w, "error: %s\n", ae.Error())
		if ae.Status == 401 {
			return 3
		}
		return 1
	}
	fmt.Fprintf(w, "error: %v\n", err)
	if errors.Is(err, errUsage) {
		return 2
	}
	return 1
}
