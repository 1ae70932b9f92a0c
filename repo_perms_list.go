package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/ui"
)

type repoPermsListCmd struct {
	repoArgs
}

func (*repoPermsListCmd) Help() string {
	return `Permissions inherited from the project or granted globally are not shown.`
}

func (cmd *repoPermsListCmd) Run(
	ctx context.Context,
	view ui.View,
	client *bitbucket.Client,
) error {
	repos := client.Repositories()

	var perms []principalPermission
	for perm, err := range repos.AllPermissionsByUser(ctx, cmd.Project, cmd.Slug) {
		if err != nil {
			return fmt.Errorf("list user permissions of %v: %w", &cmd.repoArgs, err)
		}
		perms = append(perms, principalPermission{Kind: "user", Permission: *perm})
	}
	for perm, err := range repos.AllPermissionsByGroup(ctx, cmd.Project, cmd.Slug) {
		if err != nil {
			return fmt.Errorf("list group permissions of %v: %w", &cmd.repoArgs, err)
		}
		perms = append(perms, principalPermission{Kind: "group", Permission: *perm})
	}

	return renderPermissions(view, perms)
}
