package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/ui"
)

type repoGetCmd struct {
	repoArgs
}

func (cmd *repoGetCmd) Run(
	ctx context.Context,
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
	return renderRepository(view, repo)
}
