package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/ui"
)

type projectGetCmd struct {
	Key string `arg:"" help:"Key of the project"`
}

func (cmd *projectGetCmd) Run(
	ctx context.Context,
	view ui.View,
	client *bitbucket.Client,
) error {
	project, err := client.Projects().Get(ctx, cmd.Key)
	if err != nil {
		return err
	}
	if err := project.Errors.Err(); err != nil {
		return fmt.Errorf("get project %v: %w", cmd.Key, err)
	}
	return renderProject(view, project)
}
