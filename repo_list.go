package main

import (
	"context"
	"strings"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/text"
	"go.abhg.dev/bbs/internal/ui"
)

type repoListCmd struct {
	Project string `arg:"" optional:"" help:"Only list repositories in this project"`

	Name string `short:"n" placeholder:"TEXT" help:"Only list repositories whose name contains this text"`
}

func (*repoListCmd) Help() string {
	return text.Dedent(`
		Without a project, lists repositories across all projects
		visible to you.
	`)
}

func (cmd *repoListCmd) Run(
	ctx context.Context,
	view ui.View,
	client *bitbucket.Client,
) error {
	var (
		repos []*bitbucket.Repository
		err   error
	)
	if cmd.Project != "" {
		repos, err = cmd.inProject(ctx, client.Repositories())
	} else {
		repos, err = cmd.search(ctx, client.Repositories())
	}
	if err != nil {
		return err
	}
	return renderRepositories(view, repos, cmd.Project == "")
}

// inProject lists repositories in the project,
// filtering by name locally.
func (cmd *repoListCmd) inProject(ctx context.Context, api *bitbucket.RepositoryAPI) ([]*bitbucket.Repository, error) {
	name := strings.ToLower(cmd.Name)

	var repos []*bitbucket.Repository
	for repo, err := range api.All(ctx, cmd.Project) {
		if err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(repo.Name), name) {
			repos = append(repos, repo)
		}
	}
	return repos, nil
}

// search pages through the repository search endpoint.
func (cmd *repoListCmd) search(ctx context.Context, api *bitbucket.RepositoryAPI) ([]*bitbucket.Repository, error) {
	opts := &bitbucket.ListRepositoriesOptions{Name: cmd.Name}

	var repos []*bitbucket.Repository
	for {
		page, err := api.ListAll(ctx, opts)
		if err != nil {
			return nil, err
		}
		if err := page.Errors.Err(); err != nil {
			return nil, err
		}
		for i := range page.Values {
			repos = append(repos, &page.Values[i])
		}
		if page.IsLastPage || len(page.Values) == 0 || page.NextPageStart <= opts.Start {
			return repos, nil
		}
		opts.Start = page.NextPageStart
	}
}
