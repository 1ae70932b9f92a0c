package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/text"
	"go.abhg.dev/bbs/internal/ui"
)

type repoCreateCmd struct {
	Project string `arg:"" help:"Key of the project to create the repository in"`
	Name    string `arg:"" help:"Name of the repository"`

	NoFork        bool   `help:"Do not allow the repository to be forked"`
	Public        bool   `help:"Allow anonymous read access to the repository"`
	DefaultBranch string `placeholder:"NAME" help:"Name of the default branch"`
}

func (*repoCreateCmd) Help() string {
	return text.Dedent(`
		The repository slug is derived from its name:
		spaces become hyphens and letters are lower-cased.

		Names must start with a letter or number
		and may contain letters, numbers, spaces, '_', '-', and '.'.
	`)
}

func (cmd *repoCreateCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	view ui.View,
	client *bitbucket.Client,
) error {
	repo, err := client.Repositories().Create(ctx, cmd.Project, &bitbucket.CreateRepository{
		Name:          cmd.Name,
		Forkable:      !cmd.NoFork,
		Public:        cmd.Public,
		DefaultBranch: cmd.DefaultBranch,
	})
	if err != nil {
		return err
	}
	if err := repo.Errors.Err(); err != nil {
		return fmt.Errorf("create repository %q: %w", cmd.Name, err)
	}

	log.Infof("Created repository %v/%v", cmd.Project, repo.Slug)
	return renderRepository(view, repo)
}
