package main

import (
	"context"
	"fmt"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/ui"
)

type repoHookListCmd struct {
	repoArgs

	Enabled bool `help:"Only list enabled hooks"`
}

func (cmd *repoHookListCmd) Run(
	ctx context.Context,
	view ui.View,
	client *bitbucket.Client,
) error {
	var hooks []*bitbucket.Hook
	for h, err := range client.Repositories().AllHooks(ctx, cmd.Project, cmd.Slug) {
		if err != nil {
			return fmt.Errorf("list hooks of %v: %w", &cmd.repoArgs, err)
		}
		if cmd.Enabled && !h.Enabled {
			continue
		}
		hooks = append(hooks, h)
	}
	return renderHooks(view, hooks)
}
