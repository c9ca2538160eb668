// Command marketplace is the terminal client for the marketplace API:
// signup with email/WhatsApp verification, shop pages, product import and
// the admin moderation lists.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"marketplace/internal/client"
	"marketplace/internal/config"
	"marketplace/internal/logger"
	"marketplace/internal/notify"
	"marketplace/internal/session"
)

type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(a *app, args []string) error
}

var commands = map[string]*Command{}

func register(c *Command) { commands[c.Name] = c }

func init() {
	register(&Command{Name: "login", Description: "Log in and store the session token", Usage: "marketplace login <email>", Run: loginCommand})
	register(&Command{Name: "logout", Description: "Forget the stored session", Usage: "marketplace logout", Run: logoutCommand})
	register(&Command{Name: "whoami", Description: "Show the logged in account", Usage: "marketplace whoami", Run: whoamiCommand})
	register(&Command{Name: "signup", Description: "Create a customer or seller account", Usage: "marketplace signup [--seller]", Run: signupCommand})
	register(&Command{Name: "shop", Description: "Show a shop page with its products", Usage: "marketplace shop <shop-id>", Run: shopCommand})
	register(&Command{Name: "import", Description: "Create products from an .xlsx sheet", Usage: "marketplace import [--template] <file.xlsx>", Run: importCommand})
	register(&Command{Name: "admin", Description: "Moderate users and sellers", Usage: "marketplace admin <users|sellers|approve|reject|delete-user|delete-seller|badge> [flags]", Run: adminCommand})
}

// app is shared by every command.
type app struct {
	ctx     context.Context
	cfg     *config.Client
	session *session.Store
	api     *client.Client
	notify  notify.Notifier
	out     io.Writer
	in      *bufio.Reader
}

func main() {
	configPath := flag.String("config", filepath.Join(config.DefaultClientDir(), "config.yaml"), "client profile")
	server := flag.String("server", "", "API origin, overrides the profile and MARKETPLACE_URL")
	save := flag.Bool("save", false, "persist --server into the profile")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	logger.InitWithWriter(os.Stderr, "marketplace-cli", *debug)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, *configPath, *server, *save)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load client profile")
	}
	if err := cmd.Run(a, flag.Args()[1:]); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", errorText(err))
		logger.Debug().Err(err).Str("command", cmd.Name).Msg("command failed")
		os.Exit(1)
	}
}

// errorText prefers the server's message over the wrapped chain.
func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return client.Message(err)
	}
	return err.Error()
}

func newApp(ctx context.Context, configPath, server string, save bool) (*app, error) {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return nil, err
	}
	if server = strings.TrimRight(strings.TrimSpace(server), "/"); server != "" {
		cfg.BaseURL = server
		if save {
			if err := config.SaveClient(configPath, cfg); err != nil {
				return nil, fmt.Errorf("save profile: %w", err)
			}
		}
	}

	if err := os.MkdirAll(cfg.SessionDir, 0o700); err != nil {
		return nil, err
	}
	store, err := session.Open(cfg.SessionDir)
	if err != nil {
		return nil, err
	}

	return &app{
		ctx:     ctx,
		cfg:     cfg,
		session: store,
		api:     client.New(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}, store),
		notify:  notify.Log{},
		out:     os.Stdout,
		in:      bufio.NewReader(os.Stdin),
	}, nil
}

var errNotLoggedIn = errors.New("not logged in, run: marketplace login <email>")

// requireLogin drops an expired token and loads the current user.
func (a *app) requireLogin() (*client.User, error) {
	if a.session.Expired() {
		if a.session.Token() != "" {
			_ = a.session.Clear()
			return nil, errors.New("session expired, please log in again")
		}
		return nil, errNotLoggedIn
	}
	if u := a.session.User(); u != nil {
		return u, nil
	}
	u, err := a.api.Me(a.ctx)
	if err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			_ = a.session.Clear()
			return nil, errNotLoggedIn
		}
		return nil, err
	}
	a.session.SetUser(u)
	return u, nil
}

// prompt reads one trimmed line.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: marketplace [--server URL] [--config FILE] <command> [args]\n\nCommands:\n")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", n, commands[n].Description)
	}
	fmt.Fprintln(os.Stderr, "\nGlobal flags:")
	flag.PrintDefaults()
}

// newFlags returns the flag set of a registered command.
func newFlags(name string) *flag.FlagSet {
	c := commands[name]
	fs := flag.NewFlagSet(c.Name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\nUSAGE:\n    %s\n", c.Description, c.Usage)
		fs.PrintDefaults()
	}
	return fs
}
