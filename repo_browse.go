package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/cli/browser"
	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/ui"
)

// _openURL opens a URL in the user's browser.
var _openURL = browser.OpenURL

type repoBrowseCmd struct {
	repoArgs

	Print bool `short:"p" help:"Print the URL instead of opening it"`
}

func (cmd *repoBrowseCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	view ui.View,
	client *bitbucket.Client,
) error {
	repo, err := client.Repositories().Get(ctx, cmd.Project, cmd.Slug)
	if err != nil {
		return err
	}
	if err := repo.Errors.Err(); err != nil {
		return fmt.Errorf("get repository %v: %w", &cmd.repoArgs, err)
	}

	url := repo.WebURL()
	if url == "" {
		return errors.New("server did not report a web URL for the repository")
	}

	if cmd.Print {
		_, err := fmt.Fprintln(view, url)
		return err
	}

	log.Debug("Opening browser", "url", url)
	if err := _openURL(url); err != nil {
		log.Warn("Could not open browser", "error", err)
		_, err := fmt.Fprintln(view, url)
		return err
	}
	return nil
}
