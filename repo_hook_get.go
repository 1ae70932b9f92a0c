package main

import (
	"context"

	"go.abhg.dev/bbs/internal/ui"
)

type repoHookGetCmd struct {
	hookArgs
}

func (cmd *repoHookGetCmd) Run(
	ctx context.Context,
	view ui.View,
	hooks HookHandler,
) error {
	h, err := hooks.Resolve(ctx, cmd.request())
	if err != nil {
		return err
	}
	return renderHook(view, h)
}
