package bitbucket

import (
	"context"
	"fmt"
	"iter"
)

// Project is a Bitbucket Server project:
// a named container for repositories.
type Project struct {
	ID          int    `json:"id,omitempty"`
	Key         string `json:"key"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public,omitempty"`
	Type        string `json:"type,omitempty"` // NORMAL or PERSONAL
	Links       Links  `json:"links,omitzero"`

	Errors ErrorList `json:"errors,omitempty"`
}

// Links holds the hyperlinks attached to an entity.
type Links struct {
	Self  []Link `json:"self,omitempty"`
	Clone []Link `json:"clone,omitempty"`
}

// Link is a single hyperlink.
type Link struct {
	Href string `json:"href"`
	Name string `json:"name,omitempty"` // e.g. "http" or "ssh" for clone links
}

// CreateProject is a request to create a project.
type CreateProject struct {
	Key string `json:"key"` // required

	// Name defaults to Key if empty.
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Avatar is a data URI of a PNG or JPEG image.
	Avatar string `json:"avatar,omitempty"`
}

// ListProjectsOptions filters the projects returned by [ProjectAPI.List].
type ListProjectsOptions struct {
	// Name matches projects whose name contains this string.
	Name string `url:"name,omitempty"`

	// Permission matches projects the user has this permission on,
	// e.g. PROJECT_READ.
	Permission string `url:"permission,omitempty"`

	Start int `url:"start,omitempty"`
	Limit int `url:"limit,omitempty"`
}

// ProjectAPI manages projects.
type ProjectAPI struct {
	client *client
}

// Create creates a new project.
// Errors is non-empty if the key is taken or invalid.
func (p *ProjectAPI) Create(ctx context.Context, req *CreateProject) (*Project, error) {
	body := *req
	if body.Name == "" {
		body.Name = body.Key
	}

	var project Project
	errs, err := p.client.post(ctx, "projects", &body, &project)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	project.Errors = errs
	return &project, nil
}

// Get retrieves the project with the given key.
// Errors is non-empty if it does not exist.
func (p *ProjectAPI) Get(ctx context.Context, key string) (*Project, error) {
	var project Project
	errs, err := p.client.get(ctx, apiPath("projects", key), nil, &project)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	project.Errors = errs
	return &project, nil
}

// Delete deletes the project with the given key.
// The project must not contain any repositories.
// Returns false if the server refused.
func (p *ProjectAPI) Delete(ctx context.Context, key string) (bool, error) {
	errs, err := p.client.delete(ctx, apiPath("projects", key), nil, nil)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return len(errs) == 0, nil
}

// List retrieves a page of projects visible to the user.
func (p *ProjectAPI) List(ctx context.Context, opts *ListProjectsOptions) (*ProjectPage, error) {
	if opts == nil {
		opts = &ListProjectsOptions{}
	}
	page, err := getPage[Project](ctx, p.client, "projects", opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return page, nil
}

// All iterates over all projects matching opts.
// Start and Limit in opts are ignored.
func (p *ProjectAPI) All(ctx context.Context, opts *ListProjectsOptions) iter.Seq2[*Project, error] {
	var filter ListProjectsOptions
	if opts != nil {
		filter = *opts
	}
	return allPages(ctx, func(ctx context.Context, start, limit int) (*ProjectPage, error) {
		filter.Start, filter.Limit = start, limit
		return p.List(ctx, &filter)
	})
}
