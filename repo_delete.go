package main

import (
	"context"
	"errors"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/text"
	"go.abhg.dev/bbs/internal/ui"
)

type repoDeleteCmd struct {
	repoArgs

	Yes bool `short:"y" help:"Delete without asking for confirmation"`
}

func (*repoDeleteCmd) Help() string {
	return text.Dedent(`
		Asks for confirmation before deleting the repository.
		Use --yes to skip the prompt in scripts.

		Deleting a repository that does not exist does nothing.
	`)
}

func (cmd *repoDeleteCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	view ui.View,
	client *bitbucket.Client,
) error {
	repos := client.Repositories()

	repo, err := repos.Get(ctx, cmd.Project, cmd.Slug)
	if err != nil {
		return err
	}
	if repo.Errors.HasException("NoSuchRepositoryException") {
		log.Infof("%v: does not exist", &cmd.repoArgs)
		return nil
	}
	if err := repo.Errors.Err(); err != nil {
		return fmt.Errorf("get repository %v: %w", &cmd.repoArgs, err)
	}

	if !cmd.Yes {
		if err := cmd.confirm(view); err != nil {
			return err
		}
	}

	ok, err := repos.Delete(ctx, cmd.Project, cmd.Slug)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("repository %v was not deleted", &cmd.repoArgs)
	}

	log.Infof("Deleted repository %v", &cmd.repoArgs)
	return nil
}

func (cmd *repoDeleteCmd) confirm(view ui.View) error {
	var proceed bool
	prompt := ui.NewConfirm().
		WithTitle(fmt.Sprintf("Delete repository %v?", &cmd.repoArgs)).
		WithDescription("This cannot be undone.").
		WithValue(&proceed)
	if err := ui.Run(view, prompt); err != nil {
		if errors.Is(err, ui.ErrPrompt) {
			return errors.New("cannot confirm deletion in non-interactive mode: use --yes")
		}
		return fmt.Errorf("run prompt: %w", err)
	}

	if !proceed {
		return errors.New("delete aborted")
	}
	return nil
}
