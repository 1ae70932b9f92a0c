package main

import (
	"errors"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/secret"
	"go.abhg.dev/bbs/internal/silog"
)

type authStatusCmd struct{}

func (*authStatusCmd) Help() string {
	return `Exits with a non-zero code if not logged in.`
}

func (cmd *authStatusCmd) Run(
	stash secret.Stash,
	log *silog.Logger,
	auth *bitbucket.Auth,
) error {
	token, err := auth.LoadAuthenticationToken(stash)
	if err != nil {
		if errors.Is(err, secret.ErrNotFound) {
			return fmt.Errorf("%v: not logged in", auth.URL)
		}
		return fmt.Errorf("load credentials: %w", err)
	}

	log.Infof("%v: logged in with %v", auth.URL, token.AuthType)
	return nil
}
