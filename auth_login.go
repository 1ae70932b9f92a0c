package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/cli"
	"go.abhg.dev/bbs/internal/secret"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/text"
	"go.abhg.dev/bbs/internal/ui"
)

type authLoginCmd struct {
	Refresh   bool `help:"Log in again even if already logged in"`
	WithToken bool `help:"Read a personal access token from standard input"`
}

func (*authLoginCmd) Help() string {
	name := cli.Name()
	return text.Dedent(fmt.Sprintf(`
		Authenticates with the Bitbucket Server given by --url.
		You may log in with a personal access token
		or with a username and password.
		Credentials are stored in the system keyring.

		Use --with-token to read a token from standard input
		without prompting:

			%[1]s auth login --with-token < token.txt

		The BITBUCKET_TOKEN environment variable takes precedence
		over stored credentials.
		Use '%[1]s auth logout' to delete stored credentials.
	`, name))
}

func (cmd *authLoginCmd) Run(
	ctx context.Context,
	stdin io.Reader,
	stash secret.Stash,
	view ui.View,
	log *silog.Logger,
	auth *bitbucket.Auth,
) error {
	if auth.Token == "" && !cmd.Refresh {
		if _, err := auth.LoadAuthenticationToken(stash); err == nil {
			return fmt.Errorf("already logged in to %v: use --refresh to log in again", auth.URL)
		}
	}

	var (
		token *bitbucket.AuthenticationToken
		err   error
	)
	if cmd.WithToken {
		token, err = cmd.readToken(stdin, auth)
	} else {
		token, err = auth.AuthenticationFlow(ctx, view)
	}
	if err != nil {
		return err
	}

	if err := verifyToken(ctx, log, auth.URL, token); err != nil {
		return err
	}

	if err := auth.SaveAuthenticationToken(stash, token); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	log.Infof("%v: logged in", auth.URL)
	return nil
}

func (cmd *authLoginCmd) readToken(stdin io.Reader, auth *bitbucket.Auth) (*bitbucket.AuthenticationToken, error) {
	if auth.Token != "" {
		return nil, errors.New("already authenticated with BITBUCKET_TOKEN")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil, errors.New("no token provided on standard input")
	}

	return &bitbucket.AuthenticationToken{
		AuthType:    bitbucket.AuthTypePersonalAccessToken,
		AccessToken: token,
	}, nil
}

// verifyToken checks that the server accepts the credentials
// by listing a single project.
func verifyToken(ctx context.Context, log *silog.Logger, url string, token *bitbucket.AuthenticationToken) error {
	client, err := bitbucket.NewClient(url, &bitbucket.ClientOptions{
		Token: token,
		Log:   log,
	})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	page, err := client.Projects().List(ctx, &bitbucket.ListProjectsOptions{Limit: 1})
	if err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}
	if err := page.Errors.Err(); err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}
	return nil
}
