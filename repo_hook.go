package main

import (
	"context"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/handler/hook"
)

type repoHookCmd struct {
	List    repoHookListCmd    `cmd:"" aliases:"ls" help:"List hooks available to a repository"`
	Get     repoHookGetCmd     `cmd:"" help:"Show a hook"`
	Enable  repoHookEnableCmd  `cmd:"" help:"Enable a hook"`
	Disable repoHookDisableCmd `cmd:"" help:"Disable a hook"`
}

// HookHandler looks up and toggles repository hooks.
type HookHandler interface {
	Resolve(ctx context.Context, req *hook.Request) (*bitbucket.Hook, error)
	Enable(ctx context.Context, req *hook.Request) (*bitbucket.Hook, error)
	Disable(ctx context.Context, req *hook.Request) (*bitbucket.Hook, error)
}

var _ HookHandler = (*hook.Handler)(nil)

// hookArgs identifies a hook on a repository.
type hookArgs struct {
	repoArgs

	Key string `arg:"" help:"Hook key (pluginKey:moduleKey), module key, or name"`
}

func (a *hookArgs) request() *hook.Request {
	return &hook.Request{
		Project: a.Project,
		Slug:    a.Slug,
		Key:     a.Key,
	}
}
