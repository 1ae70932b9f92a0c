package bitbucket

import (
	"context"
	"fmt"
	"iter"
)

// Repository is a Bitbucket Server repository.
type Repository struct {
	ID            int         `json:"id,omitempty"`
	Slug          string      `json:"slug"`
	Name          string      `json:"name"`
	ScmID         string      `json:"scmId,omitempty"`
	State         string      `json:"state,omitempty"` // e.g. AVAILABLE, INITIALISING
	StatusMessage string      `json:"statusMessage,omitempty"`
	Forkable      bool        `json:"forkable"`
	Public        bool        `json:"public,omitempty"`
	Project       *Project    `json:"project,omitempty"`
	Origin        *Repository `json:"origin,omitempty"` // set for forks
	Links         Links       `json:"links,omitzero"`

	Errors ErrorList `json:"errors,omitempty"`
}

// WebURL returns the address of the repository in the web UI,
// or an empty string if the server did not report one.
func (r *Repository) WebURL() string {
	if len(r.Links.Self) == 0 {
		return ""
	}
	return r.Links.Self[0].Href
}

// CloneURL returns the clone URL for the given protocol ("http" or "ssh"),
// or an empty string if there isn't one.
func (r *Repository) CloneURL(protocol string) string {
	for _, l := range r.Links.Clone {
		if l.Name == protocol {
			return l.Href
		}
	}
	return ""
}

// CreateRepository is a request to create a repository.
type CreateRepository struct {
	// Name of the repository.
	// Bitbucket derives the slug from this.
	Name string `json:"name"` // required

	// ScmID is the type of repository. Defaults to "git".
	ScmID string `json:"scmId"`

	// Forkable reports whether the repository may be forked.
	Forkable bool `json:"forkable"`

	// DefaultBranch is the name of the default branch, if not the server default.
	DefaultBranch string `json:"defaultBranch,omitempty"`

	Public bool `json:"public,omitempty"`
}

// ForkRepository is a request to fork a repository.
type ForkRepository struct {
	// Name of the fork. Defaults to the name of the origin.
	Name string `json:"name,omitempty"`

	// Project is the key of the project to fork into.
	// Defaults to the user's personal project.
	Project string `json:"-"`
}

// ListRepositoriesOptions filters the repositories returned by
// [RepositoryAPI.ListAll].
type ListRepositoriesOptions struct {
	// Name matches repositories whose name contains this string.
	Name string `url:"name,omitempty"`

	// ProjectName matches repositories in projects with this name.
	ProjectName string `url:"projectname,omitempty"`

	// Permission matches repositories the user has this permission on,
	// e.g. REPO_WRITE.
	Permission string `url:"permission,omitempty"`

	Start int `url:"start,omitempty"`
	Limit int `url:"limit,omitempty"`
}

// RepositoryAPI manages repositories and their settings.
type RepositoryAPI struct {
	client *client
}

func reposPath(project string, segments ...string) string {
	return apiPath(append([]string{"projects", project, "repos"}, segments...)...)
}

// Create creates a repository in the given project.
// Errors is non-empty if the name is illegal or already taken.
func (r *RepositoryAPI) Create(
	ctx context.Context,
	project string,
	req *CreateRepository,
) (*Repository, error) {
	body := *req
	if body.ScmID == "" {
		body.ScmID = "git"
	}

	var repo Repository
	errs, err := r.client.post(ctx, reposPath(project), &body, &repo)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	repo.Errors = errs
	return &repo, nil
}

// Get retrieves a repository by its slug.
// Errors is non-empty if it does not exist.
func (r *RepositoryAPI) Get(ctx context.Context, project, slug string) (*Repository, error) {
	var repo Repository
	errs, err := r.client.get(ctx, reposPath(project, slug), nil, &repo)
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}
	repo.Errors = errs
	return &repo, nil
}

// Fork forks a repository.
func (r *RepositoryAPI) Fork(
	ctx context.Context,
	project, slug string,
	req *ForkRepository,
) (*Repository, error) {
	type forkProject struct {
		Key string `json:"key"`
	}
	body := struct {
		Name    string       `json:"name,omitempty"`
		Project *forkProject `json:"project,omitempty"`
	}{Name: req.Name}
	if req.Project != "" {
		body.Project = &forkProject{Key: req.Project}
	}

	var repo Repository
	errs, err := r.client.post(ctx, reposPath(project, slug), &body, &repo)
	if err != nil {
		return nil, fmt.Errorf("fork repository: %w", err)
	}
	repo.Errors = errs
	return &repo, nil
}

// Delete schedules a repository for deletion.
//
// Deleting a repository that does not exist succeeds,
// so this only returns false if the server refused the request.
func (r *RepositoryAPI) Delete(ctx context.Context, project, slug string) (bool, error) {
	errs, err := r.client.delete(ctx, reposPath(project, slug), nil, nil)
	if err != nil {
		return false, fmt.Errorf("delete repository: %w", err)
	}
	return len(errs) == 0, nil
}

// List retrieves a page of repositories in a project.
// A limit of zero uses the server default.
func (r *RepositoryAPI) List(
	ctx context.Context,
	project string,
	start, limit int,
) (*RepositoryPage, error) {
	page, err := getPage[Repository](ctx, r.client, reposPath(project),
		&pageParams{Start: start, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return page, nil
}

// All iterates over all repositories in a project.
func (r *RepositoryAPI) All(ctx context.Context, project string) iter.Seq2[*Repository, error] {
	return allPages(ctx, func(ctx context.Context, start, limit int) (*RepositoryPage, error) {
		return r.List(ctx, project, start, limit)
	})
}

// ListAll retrieves a page of repositories across all projects
// visible to the user.
func (r *RepositoryAPI) ListAll(
	ctx context.Context,
	opts *ListRepositoriesOptions,
) (*RepositoryPage, error) {
	if opts == nil {
		opts = &ListRepositoriesOptions{}
	}
	page, err := getPage[Repository](ctx, r.client, "repos", opts)
	if err != nil {
		return nil, fmt.Errorf("list all repositories: %w", err)
	}
	return page, nil
}
