package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/ui"
)

type projectListCmd struct {
	Name       string `short:"n" placeholder:"TEXT" help:"Only list projects whose name contains this text"`
	Permission string `placeholder:"LEVEL" help:"Only list projects on which you have this permission (read, write, admin)"`
}

// _projectPermissions maps permission flags to Bitbucket permissions.
var _projectPermissions = map[string]string{
	"read":  "PROJECT_READ",
	"write": "PROJECT_WRITE",
	"admin": "PROJECT_ADMIN",
}

func (cmd *projectListCmd) Run(
	ctx context.Context,
	view ui.View,
	client *bitbucket.Client,
) error {
	permission, ok := _projectPermissions[cmd.Permission]
	if cmd.Permission != "" && !ok {
		return fmt.Errorf("unknown permission %q: expected read, write, or admin", cmd.Permission)
	}

	opts := &bitbucket.ListProjectsOptions{
		Name:       cmd.Name,
		Permission: permission,
	}

	var projects []*bitbucket.Project
	for project, err := range client.Projects().All(ctx, opts) {
		if err != nil {
			return err
		}
		projects = append(projects, project)
	}
	return renderProjects(view, projects)
}
