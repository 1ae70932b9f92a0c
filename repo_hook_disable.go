package main

import "context"

type repoHookDisableCmd struct {
	hookArgs
}

func (*repoHookDisableCmd) Help() string {
	return `Disabling a hook that is already disabled does nothing.`
}

func (cmd *repoHookDisableCmd) Run(ctx context.Context, hooks HookHandler) error {
	_, err := hooks.Disable(ctx, cmd.request())
	return err
}
