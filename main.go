// bbs manages projects and repositories on a Bitbucket Server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/cli"
	"go.abhg.dev/bbs/internal/handler/hook"
	"go.abhg.dev/bbs/internal/secret"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/ui"
)

// _version is set at build time with -ldflags.
var _version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var view ui.View = &ui.FileView{W: os.Stdout}
	if isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		view = &ui.TerminalView{R: os.Stdin, W: os.Stdout}
	}

	os.Exit(run(ctx, &runOptions{
		Args:   os.Args[1:],
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		View:   view,
	}))
}

type runOptions struct {
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	View   ui.View

	// Stash overrides the secret stash chosen by flags.
	Stash secret.Stash

	// Exit is called by kong after --help.
	// Defaults to os.Exit.
	Exit func(int)
}

// run parses and runs a command, returning the exit code.
func run(ctx context.Context, opts *runOptions) int {
	var logLevel slog.LevelVar
	log := silog.New(opts.Stderr, &silog.Options{Level: &logLevel})

	exit := opts.Exit
	if exit == nil {
		exit = os.Exit
	}

	var cmd mainCmd
	stash := func() secret.Stash {
		if opts.Stash != nil {
			return opts.Stash
		}
		return cmd.stash()
	}
	parser, err := kong.New(&cmd,
		kong.Name(cli.Name()),
		kong.Description("bbs manages projects and repositories on a Bitbucket Server."),
		kong.Writers(opts.Stdout, opts.Stderr),
		kong.Exit(exit),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": _version},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(opts.View, (*ui.View)(nil)),
		kong.BindTo(opts.Stdin, (*io.Reader)(nil)),
		kong.Bind(log),
		kong.BindToProvider(func() (secret.Stash, error) {
			return stash(), nil
		}),
		kong.BindToProvider(func() (*bitbucket.Auth, error) {
			return cmd.auth(log), nil
		}),
		kong.BindToProvider(func() (*bitbucket.Client, error) {
			return cmd.client(log, stash())
		}),
		kong.BindToProvider(func() (HookHandler, error) {
			client, err := cmd.client(log, stash())
			if err != nil {
				return nil, err
			}
			return &hook.Handler{
				Log:     log,
				Service: client.Repositories(),
			}, nil
		}),
	)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "%v: %v\n", cli.Name(), err)
		return 1
	}

	kctx, err := parser.Parse(opts.Args)
	if err != nil {
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) {
			_ = parseErr.Context.PrintUsage(true)
		}
		log.Error(err.Error())
		return 1
	}

	if cmd.Verbose {
		logLevel.Set(slog.LevelDebug)
	}

	if err := kctx.Run(); err != nil {
		log.Error(err.Error())
		return 1
	}
	return 0
}

type mainCmd struct {
	Verbose bool             `short:"v" help:"Enable verbose output" env:"BBS_VERBOSE"`
	Version kong.VersionFlag `help:"Print version information and quit"`

	URL        string `name:"url" env:"BITBUCKET_URL" required:"" placeholder:"URL" help:"Base URL of the Bitbucket Server"`
	Token      string `env:"BITBUCKET_TOKEN" hidden:"" help:"Personal access token"`
	Username   string `env:"BITBUCKET_USERNAME" hidden:"" help:"Username for basic authentication"`
	Password   string `env:"BITBUCKET_PASSWORD" hidden:"" help:"Password for basic authentication"`
	SecretFile string `env:"BBS_SECRET_FILE" hidden:"" type:"path" help:"Store credentials in this file instead of the system keyring"`

	Auth    authCmd    `cmd:"" group:"Authentication" help:"Authenticate with Bitbucket Server"`
	Project projectCmd `cmd:"" aliases:"p" group:"Projects" help:"Manage projects"`
	Repo    repoCmd    `cmd:"" aliases:"r" group:"Repositories" help:"Manage repositories"`
}

func (cmd *mainCmd) stash() secret.Stash {
	if cmd.SecretFile != "" {
		return &secret.FileStash{Path: cmd.SecretFile}
	}
	return &secret.Keyring{}
}

func (cmd *mainCmd) auth(log *silog.Logger) *bitbucket.Auth {
	return &bitbucket.Auth{
		URL:   cmd.URL,
		Token: cmd.Token,
		Log:   log,
	}
}

// token returns the credentials to talk to the server with.
// Environment variables take precedence over stored credentials.
func (cmd *mainCmd) token(log *silog.Logger, stash secret.Stash) (*bitbucket.AuthenticationToken, error) {
	if cmd.Token == "" && cmd.Username != "" && cmd.Password != "" {
		return &bitbucket.AuthenticationToken{
			AuthType: bitbucket.AuthTypeBasic,
			Username: cmd.Username,
			Password: cmd.Password,
		}, nil
	}

	token, err := cmd.auth(log).LoadAuthenticationToken(stash)
	if err != nil {
		if errors.Is(err, secret.ErrNotFound) {
			return nil, fmt.Errorf("not logged in to %v: run '%v auth login' or set BITBUCKET_TOKEN",
				cmd.URL, cli.Name())
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return token, nil
}

func (cmd *mainCmd) client(log *silog.Logger, stash secret.Stash) (*bitbucket.Client, error) {
	token, err := cmd.token(log, stash)
	if err != nil {
		return nil, err
	}

	client, err := bitbucket.NewClient(cmd.URL, &bitbucket.ClientOptions{
		Token:      token,
		Log:        log,
		MaxRetries: 3,
		UserAgent:  cli.Name() + "/" + _version,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}
