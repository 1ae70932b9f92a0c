package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/ui"
)

type repoSettingsGetCmd struct {
	repoArgs
}

func (cmd *repoSettingsGetCmd) Run(
	ctx context.Context,
	view ui.View,
	client *bitbucket.Client,
) error {
	settings, err := client.Repositories().PullRequestSettings(ctx, cmd.Project, cmd.Slug)
	if err != nil {
		return err
	}
	if err := settings.Errors.Err(); err != nil {
		return fmt.Errorf("get pull request settings of %v: %w", &cmd.repoArgs, err)
	}
	return renderPullRequestSettings(view, settings)
}
