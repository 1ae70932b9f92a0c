package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/text"
	"go.abhg.dev/bbs/internal/ui"
)

type repoForkCmd struct {
	repoArgs

	To   string `placeholder:"PROJECT" help:"Key of the project to fork into"`
	Name string `short:"n" placeholder:"NAME" help:"Name of the fork. Defaults to the name of the original."`
}

func (*repoForkCmd) Help() string {
	return text.Dedent(`
		Without --to, the fork is created in your personal project.
		The original repository must be forkable.
	`)
}

func (cmd *repoForkCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	view ui.View,
	client *bitbucket.Client,
) error {
	fork, err := client.Repositories().Fork(ctx, cmd.Project, cmd.Slug, &bitbucket.ForkRepository{
		Name:    cmd.Name,
		Project: cmd.To,
	})
	if err != nil {
		return err
	}
	if err := fork.Errors.Err(); err != nil {
		return fmt.Errorf("fork %v: %w", &cmd.repoArgs, err)
	}

	log.Infof("Forked %v", &cmd.repoArgs)
	return renderRepository(view, fork)
}
