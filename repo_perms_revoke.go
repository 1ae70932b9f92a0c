package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
)

type repoPermsRevokeCmd struct {
	repoArgs
	principalFlags
}

func (cmd *repoPermsRevokeCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	client *bitbucket.Client,
) error {
	if err := cmd.validate(); err != nil {
		return err
	}

	var (
		repos = client.Repositories()
		ok    bool
		err   error
	)
	if cmd.User != "" {
		ok, err = repos.DeletePermissionsByUser(ctx, cmd.Project, cmd.Slug, cmd.User)
	} else {
		ok, err = repos.DeletePermissionsByGroup(ctx, cmd.Project, cmd.Slug, cmd.Group)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("could not revoke permissions of %v on %v", &cmd.principalFlags, &cmd.repoArgs)
	}

	log.Infof("Revoked permissions of %v on %v", &cmd.principalFlags, &cmd.repoArgs)
	return nil
}
