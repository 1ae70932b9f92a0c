package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/text"
	"go.abhg.dev/bbs/internal/ui"
)

type projectCreateCmd struct {
	Key         string `arg:"" help:"Short key for the project, e.g. PRJ"`
	Name        string `short:"n" placeholder:"NAME" help:"Name of the project. Defaults to the key."`
	Description string `short:"d" placeholder:"TEXT" help:"Description of the project"`
}

func (*projectCreateCmd) Help() string {
	return text.Dedent(`
		Project keys must be unique on the server.
		Bitbucket Server stores them in upper case.
	`)
}

func (cmd *projectCreateCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	view ui.View,
	client *bitbucket.Client,
) error {
	name := cmd.Name
	if name == "" {
		name = cmd.Key
	}

	project, err := client.Projects().Create(ctx, &bitbucket.CreateProject{
		Key:         cmd.Key,
		Name:        name,
		Description: cmd.Description,
	})
	if err != nil {
		return err
	}
	if err := project.Errors.Err(); err != nil {
		return fmt.Errorf("create project %v: %w", cmd.Key, err)
	}

	log.Infof("Created project %v", project.Key)
	return renderProject(view, project)
}
