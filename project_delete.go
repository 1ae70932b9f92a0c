package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
)

type projectDeleteCmd struct {
	Key string `arg:"" help:"Key of the project"`
}

func (*projectDeleteCmd) Help() string {
	return `Projects that still contain repositories cannot be deleted.`
}

func (cmd *projectDeleteCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	client *bitbucket.Client,
) error {
	ok, err := client.Projects().Delete(ctx, cmd.Key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("project %v was not deleted: it may not exist or may not be empty", cmd.Key)
	}

	log.Infof("Deleted project %v", cmd.Key)
	return nil
}
