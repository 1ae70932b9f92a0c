package bitbucket

import (
	"context"
	"fmt"
)

// MergeStrategyID identifies a merge strategy.
type MergeStrategyID string

// Merge strategies supported by Bitbucket Server's git SCM.
const (
	MergeStrategyNoFF         MergeStrategyID = "no-ff"
	MergeStrategyFF           MergeStrategyID = "ff"
	MergeStrategyFFOnly       MergeStrategyID = "ff-only"
	MergeStrategySquash       MergeStrategyID = "squash"
	MergeStrategySquashFFOnly MergeStrategyID = "squash-ff-only"
	MergeStrategyRebaseNoFF   MergeStrategyID = "rebase-no-ff"
	MergeStrategyRebaseFFOnly MergeStrategyID = "rebase-ff-only"
)

// MergeStrategyIDs lists all known merge strategies
// in the order Bitbucket presents them.
func MergeStrategyIDs() []MergeStrategyID {
	return []MergeStrategyID{
		MergeStrategyNoFF,
		MergeStrategyFF,
		MergeStrategyFFOnly,
		MergeStrategyRebaseNoFF,
		MergeStrategyRebaseFFOnly,
		MergeStrategySquash,
		MergeStrategySquashFFOnly,
	}
}

// ParseMergeStrategyID parses a merge strategy ID.
func ParseMergeStrategyID(s string) (MergeStrategyID, error) {
	for _, id := range MergeStrategyIDs() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown merge strategy %q", s)
}

// MergeStrategy is a policy for merging pull requests.
type MergeStrategy struct {
	ID          MergeStrategyID `json:"id"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Enabled     bool            `json:"enabled,omitempty"`

	// Flag is the git flag used for the strategy, e.g. --squash.
	Flag string `json:"flag,omitempty"`
}

// MergeConfigType is the scope a merge configuration was inherited from.
type MergeConfigType string

// Known merge configuration scopes.
const (
	MergeConfigRepository MergeConfigType = "REPOSITORY"
	MergeConfigProject    MergeConfigType = "PROJECT"
	MergeConfigSCM        MergeConfigType = "SCM"
	MergeConfigDefault    MergeConfigType = "DEFAULT"
)

// MergeConfig is the set of merge strategies available to pull requests.
type MergeConfig struct {
	DefaultStrategy *MergeStrategy  `json:"defaultStrategy,omitempty"`
	Strategies      []MergeStrategy `json:"strategies"`
	Type            MergeConfigType `json:"type,omitempty"`
}

// PullRequestSettings is the pull request configuration of a repository.
type PullRequestSettings struct {
	MergeConfig MergeConfig `json:"mergeConfig"`

	RequiredAllApprovers     bool `json:"requiredAllApprovers"`
	RequiredAllTasksComplete bool `json:"requiredAllTasksComplete"`
	RequiredApprovers        int  `json:"requiredApprovers"`
	RequiredSuccessfulBuilds int  `json:"requiredSuccessfulBuilds"`

	Errors ErrorList `json:"errors,omitempty"`
}

// CreatePullRequestSettings is a request to update
// the pull request settings of a repository.
type CreatePullRequestSettings struct {
	MergeConfig MergeConfig `json:"mergeConfig"`

	RequiredAllApprovers     bool `json:"requiredAllApprovers"`
	RequiredAllTasksComplete bool `json:"requiredAllTasksComplete"`
	RequiredApprovers        int  `json:"requiredApprovers"`
	RequiredSuccessfulBuilds int  `json:"requiredSuccessfulBuilds"`
}

func pullRequestSettingsPath(project, slug string) string {
	return reposPath(project, slug, "settings", "pull-requests")
}

// PullRequestSettings retrieves the pull request settings of a repository.
func (r *RepositoryAPI) PullRequestSettings(
	ctx context.Context,
	project, slug string,
) (*PullRequestSettings, error) {
	var settings PullRequestSettings
	errs, err := r.client.get(ctx, pullRequestSettingsPath(project, slug), nil, &settings)
	if err != nil {
		return nil, fmt.Errorf("get pull request settings: %w", err)
	}
	settings.Errors = errs
	return &settings, nil
}

// UpdatePullRequestSettings replaces the pull request settings of a repository,
// returning the settings now in effect.
func (r *RepositoryAPI) UpdatePullRequestSettings(
	ctx context.Context,
	project, slug string,
	req *CreatePullRequestSettings,
) (*PullRequestSettings, error) {
	var settings PullRequestSettings
	errs, err := r.client.post(ctx, pullRequestSettingsPath(project, slug), req, &settings)
	if err != nil {
		return nil, fmt.Errorf("update pull request settings: %w", err)
	}
	settings.Errors = errs
	return &settings, nil
}
