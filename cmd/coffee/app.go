package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/coffeelog/coffee/internal/client"
	"github.com/coffeelog/coffee/internal/clientconfig"
	"github.com/coffeelog/coffee/internal/report"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usageText = `Usage: coffee [-s SERVER] [-c CONFIG] <command> [args]

Commands:
  register EMAIL          register and store the API key in CONFIG
  add [-k KEY] AMOUNT     record AMOUNT shots now
  list [-k KEY] [DATE]    show consumption per day, optionally only DATE (YYYY-MM-DD)

Global flags:
  -s, --server URL        server address (default $COFFEE_SERVER or http://localhost:8080)
  -c, --config PATH       config file (default ~/.coffee)
`

type app struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	loc    *time.Location
}

type globals struct {
	server string
	config string
}

func (a *app) run(ctx context.Context, args []string) int {
	var g globals
	fs := flag.NewFlagSet("coffee", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() { fmt.Fprint(a.stderr, usageText) }
	fs.StringVar(&g.server, "s", "", "server address")
	fs.StringVar(&g.server, "server", "", "server address")
	fs.StringVar(&g.config, "c", "", "config file path")
	fs.StringVar(&g.config, "config", "", "config file path")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	env, err := clientconfig.LoadEnv()
	if err != nil {
		return a.fail(err)
	}
	path, err := clientconfig.ResolvePath(g.config)
	if err != nil {
		return a.fail(err)
	}

	c := client.New(clientconfig.ResolveServer(g.server, env), nil)

	switch rest[0] {
	case "register":
		return a.register(ctx, c, path, rest[1:])
	case "add":
		return a.add(ctx, c, path, rest[1:])
	case "list":
		return a.list(ctx, c, path, rest[1:])
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n", rest[0])
		fs.Usage()
		return exitUsage
	}
}

func (a *app) register(ctx context.Context, c *client.Client, path string, args []string) int {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "usage: coffee register EMAIL")
		return exitUsage
	}

	key, err := c.Register(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(a.stderr, "Server error when registering.")
		return a.fail(err)
	}

	// Keep whatever else the file holds; only the key changes.
	file, err := clientconfig.Load(path)
	if err != nil {
		return a.fail(err)
	}
	if file == nil {
		file = &clientconfig.File{}
	}
	file.APIKey = key

	if err := clientconfig.Save(path, file); err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.stdout, "Config updated.")
	return exitOK
}

func (a *app) add(ctx context.Context, c *client.Client, path string, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	explicit := keyFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "usage: coffee add [-k KEY] AMOUNT")
		return exitUsage
	}

	shots, err := strconv.ParseInt(fs.Arg(0), 10, 32)
	if err != nil {
		fmt.Fprintf(a.stderr, "Cannot convert argument to number: %q\n", fs.Arg(0))
		return exitUsage
	}

	key, err := a.apiKey(path, *explicit)
	if err != nil {
		return a.fail(err)
	}

	if err := c.AddCoffee(ctx, key, a.now().Unix(), int32(shots)); err != nil {
		return a.fail(err)
	}

	fmt.Fprintln(a.stdout, "Done!")
	return exitOK
}

func (a *app) list(ctx context.Context, c *client.Client, path string, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	explicit := keyFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(a.stderr, "usage: coffee list [-k KEY] [DATE]")
		return exitUsage
	}

	key, err := a.apiKey(path, *explicit)
	if err != nil {
		return a.fail(err)
	}

	items, err := c.ListCoffee(ctx, key)
	if err != nil {
		return a.fail(err)
	}

	days := report.GroupByDay(items, a.loc)
	if fs.NArg() == 1 {
		days, err = report.FilterDay(days, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(a.stderr, err)
			return exitUsage
		}
	}

	if err := report.Write(a.stdout, days); err != nil {
		return a.fail(err)
	}
	return exitOK
}

// keyFlags registers -k and --key on fs, bound to one value.
func keyFlags(fs *flag.FlagSet) *string {
	key := new(string)
	fs.StringVar(key, "k", "", "API key (overrides the config file)")
	fs.StringVar(key, "key", "", "API key (overrides the config file)")
	return key
}

func (a *app) apiKey(path, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	file, err := clientconfig.Load(path)
	if err != nil {
		return "", err
	}
	return clientconfig.ResolveAPIKey("", file)
}

func (a *app) fail(err error) int {
	fmt.Fprintf(a.stderr, "error: %v\n", err)
	return exitError
}
