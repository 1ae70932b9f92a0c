package shambucket

import (
	"context"
	"net/http"

	"go.abhg.dev/bbs/internal/bitbucket"
)

const _bundledHooks = "com.atlassian.bitbucket.server.bitbucket-bundled-hooks"

// DefaultHooks returns the hooks bundled with Bitbucket Server.
// Every repository starts with all of them disabled.
func DefaultHooks() []bitbucket.HookDetails {
	return []bitbucket.HookDetails{
		{
			Key:           _bundledHooks + ":all-approvers-merge-check",
			Name:          "All reviewers approve",
			Type:          bitbucket.HookTypePreMerge,
			Description:   "Require all reviewers to approve a pull request before it can be merged.",
			Version:       "8.9.0",
			ConfigFormKey: _bundledHooks + ":all-approvers-merge-check-config",
		},
		{
			Key:         _bundledHooks + ":force-push-hook",
			Name:        "Reject Force Push",
			Type:        bitbucket.HookTypePreReceive,
			Description: "Reject all force pushes (git push --force) to this repository",
			Version:     "8.9.0",
		},
		{
			Key:           _bundledHooks + ":jira-commit-checker-hook",
			Name:          "Jira Issue Commit Checker",
			Type:          bitbucket.HookTypePreReceive,
			Description:   "Require commits to reference a valid Jira issue.",
			Version:       "8.9.0",
			ConfigFormKey: _bundledHooks + ":jira-commit-checker-config",
		},
		{
			Key:         _bundledHooks + ":protect-unmerged-branch-hook",
			Name:        "Reject branch deletion with unmerged changes",
			Type:        bitbucket.HookTypePreReceive,
			Description: "Reject deletion of branches that have unmerged changes.",
			Version:     "8.9.0",
		},
	}
}

// hookDetails looks up a hook in the catalog.
// Must be called with mu held.
func (sb *ShamBucket) hookDetails(key string) (bitbucket.HookDetails, error) {
	for _, h := range sb.hooks {
		if h.Key == key {
			return h, nil
		}
	}
	return bitbucket.HookDetails{}, notFound("com.atlassian.bitbucket.hook.repository.NoSuchRepositoryHookException",
		"No repository hook with key '%s' could be found.", key)
}

func (r *shamRepo) hook(details bitbucket.HookDetails) *bitbucket.Hook {
	return &bitbucket.Hook{
		Details:    details,
		Enabled:    r.enabled[details.Key],
		Configured: details.ConfigFormKey == "",
	}
}

type listHooksRequest struct {
	PageRequest

	ProjectKey string `path:"projectKey" json:"-"`
	Slug       string `path:"repositorySlug" json:"-"`
}

var _ = shambucketRESTHandler(
	"GET /projects/{projectKey}/repos/{repositorySlug}/settings/hooks",
	(*ShamBucket).handleListHooks)

func (sb *ShamBucket) handleListHooks(_ context.Context, req *listHooksRequest) (*bitbucket.HookPage, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}

	hooks := make([]bitbucket.Hook, len(sb.hooks))
	for i, details := range sb.hooks {
		hooks[i] = *r.hook(details)
	}
	return paginate(hooks, req.PageRequest), nil
}

type hookRequest struct {
	ProjectKey string `path:"projectKey" json:"-"`
	Slug       string `path:"repositorySlug" json:"-"`
	HookKey    string `path:"hookKey" json:"-"`
}

var (
	_ = shambucketRESTHandler(
		"GET /projects/{projectKey}/repos/{repositorySlug}/settings/hooks/{hookKey}",
		(*ShamBucket).handleGetHook)
	_ = shambucketRESTHandler(
		"PUT /projects/{projectKey}/repos/{repositorySlug}/settings/hooks/{hookKey}/enabled",
		(*ShamBucket).handleEnableHook)
	_ = shambucketRESTHandler(
		"DELETE /projects/{projectKey}/repos/{repositorySlug}/settings/hooks/{hookKey}/enabled",
		(*ShamBucket).handleDisableHook)
)

func (sb *ShamBucket) handleGetHook(_ context.Context, req *hookRequest) (*bitbucket.Hook, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}
	details, err := sb.hookDetails(req.HookKey)
	if err != nil {
		return nil, err
	}
	return r.hook(details), nil
}

// handleEnableHook refuses to enable hooks that need configuration,
// since ShamBucket does not store hook settings.
func (sb *ShamBucket) handleEnableHook(_ context.Context, req *hookRequest) (*bitbucket.Hook, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}
	details, err := sb.hookDetails(req.HookKey)
	if err != nil {
		return nil, err
	}
	if details.NeedsConfig() {
		return nil, &shamError{
			status:    http.StatusBadRequest,
			exception: "com.atlassian.bitbucket.setting.SettingsValidationException",
			message:   "The hook " + details.Name + " must be configured before it can be enabled.",
		}
	}

	r.enabled[details.Key] = true
	return r.hook(details), nil
}

func (sb *ShamBucket) handleDisableHook(_ context.Context, req *hookRequest) (*bitbucket.Hook, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}
	details, err := sb.hookDetails(req.HookKey)
	if err != nil {
		return nil, err
	}

	delete(r.enabled, details.Key)
	return r.hook(details), nil
}
