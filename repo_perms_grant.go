package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
)

type repoPermsGrantCmd struct {
	repoArgs
	principalFlags

	Permission string `arg:"" help:"Permission to grant: read, write, or admin"`
}

func (*repoPermsGrantCmd) Help() string {
	return `Replaces any permission the user or group already has on the repository.`
}

func (cmd *repoPermsGrantCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	client *bitbucket.Client,
) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	permission, err := parseRepoPermission(cmd.Permission)
	if err != nil {
		return err
	}

	repos := client.Repositories()
	var ok bool
	if cmd.User != "" {
		ok, err = repos.CreatePermissionsByUser(ctx, cmd.Project, cmd.Slug, permission, cmd.User)
	} else {
		ok, err = repos.CreatePermissionsByGroup(ctx, cmd.Project, cmd.Slug, permission, cmd.Group)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("could not grant %v to %v on %v", permission, &cmd.principalFlags, &cmd.repoArgs)
	}

	log.Infof("Granted %v to %v on %v", permission, &cmd.principalFlags, &cmd.repoArgs)
	return nil
}
