// Package hook implements the repository hook commands.
package hook

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/silog"
)

//go:generate mockgen -destination=mocks_test.go -package=hook -write_package_comment=false -typed=true . Service

// Service provides access to the hooks of a repository.
type Service interface {
	AllHooks(ctx context.Context, project, slug string) iter.Seq2[*bitbucket.Hook, error]
	Hook(ctx context.Context, project, slug, key string) (*bitbucket.Hook, error)
	EnableHook(ctx context.Context, project, slug, key string) (*bitbucket.Hook, error)
	DisableHook(ctx context.Context, project, slug, key string) (*bitbucket.Hook, error)
}

var _ Service = (*bitbucket.RepositoryAPI)(nil)

// _maxSuggestions is the most suggestions offered for an unknown hook.
const _maxSuggestions = 3

// Request identifies a hook on a repository.
type Request struct {
	Project string // required
	Slug    string // required

	// Key is a full pluginKey:moduleKey hook key,
	// or a module key or hook name that matches exactly one hook.
	Key string // required
}

// UnknownHookError is returned when a key does not identify
// exactly one hook.
type UnknownHookError struct {
	Key string

	// Ambiguous is set if the key matched more than one hook.
	Ambiguous bool

	// Suggestions holds the full keys of similar hooks,
	// best match first.
	Suggestions []string
}

func (e *UnknownHookError) Error() string {
	var sb strings.Builder
	if e.Ambiguous {
		fmt.Fprintf(&sb, "hook %q is ambiguous", e.Key)
	} else {
		fmt.Fprintf(&sb, "unknown hook %q", e.Key)
	}
	if len(e.Suggestions) > 0 {
		sb.WriteString("; did you mean ")
		for i, s := range e.Suggestions {
			if i > 0 {
				sb.WriteString(" or ")
			}
			fmt.Fprintf(&sb, "%q", s)
		}
		sb.WriteString("?")
	}
	return sb.String()
}

// Handler looks up and toggles repository hooks.
type Handler struct {
	Log     *silog.Logger // required
	Service Service       // required
}

// Resolve finds the hook identified by the request.
//
// Returns an [*UnknownHookError] if no single hook matches,
// or an [bitbucket.ErrorList] if the server reported a failure.
func (h *Handler) Resolve(ctx context.Context, req *Request) (*bitbucket.Hook, error) {
	pattern := req.Key
	if key, err := bitbucket.ParseHookKey(req.Key); err == nil {
		hook, err := h.Service.Hook(ctx, req.Project, req.Slug, req.Key)
		if err != nil {
			return nil, err
		}
		if len(hook.Errors) == 0 {
			return hook, nil
		}
		if !hook.Errors.HasException("NoSuchRepositoryHookException") {
			return nil, hook.Errors
		}
		pattern = key.Module
	}

	var hooks []*bitbucket.Hook
	for hook, err := range h.Service.AllHooks(ctx, req.Project, req.Slug) {
		if err != nil {
			return nil, fmt.Errorf("list hooks: %w", err)
		}
		hooks = append(hooks, hook)
	}

	var matches []*bitbucket.Hook
	for _, hook := range hooks {
		if strings.EqualFold(moduleKey(hook), pattern) ||
			strings.EqualFold(hook.Details.Name, pattern) {
			matches = append(matches, hook)
		}
	}

	switch len(matches) {
	case 1:
		h.Log.Debug("Resolved hook", "query", req.Key, "key", matches[0].Details.Key)
		return matches[0], nil
	case 0:
		return nil, &UnknownHookError{
			Key:         req.Key,
			Suggestions: suggest(pattern, hooks),
		}
	default:
		keys := make([]string, len(matches))
		for i, m := range matches {
			keys[i] = m.Details.Key
		}
		return nil, &UnknownHookError{
			Key:         req.Key,
			Ambiguous:   true,
			Suggestions: keys,
		}
	}
}

// Enable enables the requested hook.
// Enabling a hook that is already enabled is a no-op.
func (h *Handler) Enable(ctx context.Context, req *Request) (*bitbucket.Hook, error) {
	hook, err := h.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if hook.Enabled {
		h.Log.Infof("%v: already enabled", hook.Details.Name)
		return hook, nil
	}

	if hook.Details.NeedsConfig() && !hook.Configured {
		h.Log.Warn("Hook has not been configured and may refuse to be enabled",
			"hook", hook.Details.Key)
	}

	updated, err := h.Service.EnableHook(ctx, req.Project, req.Slug, hook.Details.Key)
	if err != nil {
		return nil, err
	}
	if err := updated.Errors.Err(); err != nil {
		return nil, fmt.Errorf("enable %v: %w", hook.Details.Name, err)
	}

	h.Log.Infof("%v: enabled", hook.Details.Name)
	return updated, nil
}

// Disable disables the requested hook.
// Disabling a hook that is already disabled is a no-op.
func (h *Handler) Disable(ctx context.Context, req *Request) (*bitbucket.Hook, error) {
	hook, err := h.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if !hook.Enabled {
		h.Log.Infof("%v: already disabled", hook.Details.Name)
		return hook, nil
	}

	updated, err := h.Service.DisableHook(ctx, req.Project, req.Slug, hook.Details.Key)
	if err != nil {
		return nil, err
	}
	if err := updated.Errors.Err(); err != nil {
		return nil, fmt.Errorf("disable %v: %w", hook.Details.Name, err)
	}

	h.Log.Infof("%v: disabled", hook.Details.Name)
	return updated, nil
}

func moduleKey(hook *bitbucket.Hook) string {
	key, err := bitbucket.ParseHookKey(hook.Details.Key)
	if err != nil {
		return hook.Details.Key
	}
	return key.Module
}

// hookSource adapts a list of hooks for fuzzy matching
// against their module keys.
type hookSource []*bitbucket.Hook

var _ fuzzy.Source = hookSource(nil)

func (s hookSource) String(i int) string { return moduleKey(s[i]) }

func (s hookSource) Len() int { return len(s) }

func suggest(pattern string, hooks []*bitbucket.Hook) []string {
	matches := fuzzy.FindFrom(pattern, hookSource(hooks))
	suggestions := make([]string, 0, min(len(matches), _maxSuggestions))
	for _, m := range matches {
		if len(suggestions) == _maxSuggestions {
			break
		}
		suggestions = append(suggestions, hooks[m.Index].Details.Key)
	}
	return suggestions
}
