package main

import (
	"context"

	"go.abhg.dev/bbs/internal/text"
)

type repoHookEnableCmd struct {
	hookArgs
}

func (*repoHookEnableCmd) Help() string {
	return text.Dedent(`
		Hooks that need configuration must be configured
		in the web UI before they can be enabled.

		Enabling a hook that is already enabled does nothing.
	`)
}

func (cmd *repoHookEnableCmd) Run(ctx context.Context, hooks HookHandler) error {
	_, err := hooks.Enable(ctx, cmd.request())
	return err
}
