package bitbucket

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// HookKey identifies a repository hook.
//
// Hooks are provided by plugins, so their keys are composite:
// the plugin key and the hook's module key joined by a colon.
// For example:
//
//	com.atlassian.bitbucket.server.bitbucket-bundled-hooks:force-push-hook
type HookKey struct {
	Plugin string
	Module string
}

// ParseHookKey parses a composite "pluginKey:moduleKey" hook key.
func ParseHookKey(s string) (HookKey, error) {
	plugin, module, ok := strings.Cut(s, ":")
	if !ok {
		return HookKey{}, fmt.Errorf("hook key %q: expected pluginKey:moduleKey", s)
	}
	if plugin == "" || module == "" {
		return HookKey{}, fmt.Errorf("hook key %q: plugin and module keys must not be empty", s)
	}
	if strings.Contains(module, ":") {
		return HookKey{}, fmt.Errorf("hook key %q: too many separators", s)
	}
	return HookKey{Plugin: plugin, Module: module}, nil
}

func (k HookKey) String() string {
	return k.Plugin + ":" + k.Module
}

// HookType is the stage of a push at which a hook runs.
type HookType string

// Known hook types.
const (
	HookTypePreReceive  HookType = "PRE_RECEIVE"
	HookTypePostReceive HookType = "POST_RECEIVE"
	HookTypePreMerge    HookType = "PRE_PULL_REQUEST_MERGE"
)

// HookDetails describes a repository hook.
type HookDetails struct {
	// Key is the composite "pluginKey:moduleKey" key of the hook.
	Key         string   `json:"key"`
	Name        string   `json:"name,omitempty"`
	Type        HookType `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`

	// ConfigFormKey is set if the hook must be configured before use.
	ConfigFormKey string `json:"configFormKey,omitempty"`
}

// NeedsConfig reports whether the hook has a configuration form.
func (d *HookDetails) NeedsConfig() bool {
	return d.ConfigFormKey != ""
}

// Hook is a hook attached to a repository.
type Hook struct {
	Details    HookDetails `json:"details"`
	Enabled    bool        `json:"enabled"`
	Configured bool        `json:"configured"`

	// Errors is non-empty if the hook could not be found.
	// Enabled is false in that case.
	Errors ErrorList `json:"errors,omitempty"`
}

// errEmptyHookKey is reported for hook operations without a key.
var errEmptyHookKey = errors.New("hook key must not be empty")

func hooksPath(project, slug string, segments ...string) string {
	return reposPath(project, append([]string{slug, "settings", "hooks"}, segments...)...)
}

// ListHooks retrieves a page of the hooks available to a repository.
// Errors is non-empty and Values empty if the repository does not exist.
func (r *RepositoryAPI) ListHooks(
	ctx context.Context,
	project, slug string,
	start, limit int,
) (*HookPage, error) {
	page, err := getPage[Hook](ctx, r.client, hooksPath(project, slug),
		&pageParams{Start: start, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list hooks: %w", err)
	}
	return page, nil
}

// AllHooks iterates over all hooks available to a repository.
func (r *RepositoryAPI) AllHooks(ctx context.Context, project, slug string) iter.Seq2[*Hook, error] {
	return allPages(ctx, func(ctx context.Context, start, limit int) (*HookPage, error) {
		return r.ListHooks(ctx, project, slug, start, limit)
	})
}

// Hook retrieves a single repository hook.
func (r *RepositoryAPI) Hook(ctx context.Context, project, slug, key string) (*Hook, error) {
	return r.hookRequest(ctx, "get hook", r.client.get, project, slug, key)
}

// EnableHook enables a repository hook,
// returning its state after the change.
func (r *RepositoryAPI) EnableHook(ctx context.Context, project, slug, key string) (*Hook, error) {
	put := func(ctx context.Context, path string, params, dst any) (ErrorList, error) {
		return r.client.put(ctx, path, params, nil, dst)
	}
	return r.hookRequest(ctx, "enable hook", put, project, slug, key, "enabled")
}

// DisableHook disables a repository hook,
// returning its state after the change.
func (r *RepositoryAPI) DisableHook(ctx context.Context, project, slug, key string) (*Hook, error) {
	return r.hookRequest(ctx, "disable hook", r.client.delete, project, slug, key, "enabled")
}

// hookRequest sends a request for a single hook.
// Unknown hooks are reported as errors on a disabled Hook.
func (r *RepositoryAPI) hookRequest(
	ctx context.Context,
	op string,
	send func(ctx context.Context, path string, params, dst any) (ErrorList, error),
	project, slug, key string,
	segments ...string,
) (*Hook, error) {
	if key == "" {
		return &Hook{Errors: ErrorList{{Message: errEmptyHookKey.Error()}}}, nil
	}

	var hook Hook
	errs, err := send(ctx, hooksPath(project, slug, append([]string{key}, segments...)...), nil, &hook)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(errs) > 0 {
		return &Hook{
			Details: HookDetails{Key: key},
			Errors:  errs,
		}, nil
	}
	return &hook, nil
}
