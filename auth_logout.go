package main

import (
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/cli"
	"go.abhg.dev/bbs/internal/secret"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/text"
)

type authLogoutCmd struct{}

func (*authLogoutCmd) Help() string {
	name := cli.Name()
	return text.Dedent(fmt.Sprintf(`
		The stored credentials are deleted.
		Use '%[1]s auth login' to log in again.

		Does not do anything if not logged in.
		Credentials from BITBUCKET_TOKEN are not affected.
	`, name))
}

func (cmd *authLogoutCmd) Run(
	stash secret.Stash,
	log *silog.Logger,
	auth *bitbucket.Auth,
) error {
	if err := auth.ClearAuthenticationToken(stash); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	log.Infof("%v: logged out", auth.URL)
	if auth.Token != "" {
		log.Warn("BITBUCKET_TOKEN is still set")
	}
	return nil
}
