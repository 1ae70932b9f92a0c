package shambucket

import (
	"context"
	"slices"

	"go.abhg.dev/bbs/internal/bitbucket"
)

// _mergeStrategies describes the merge strategies of the git SCM.
var _mergeStrategies = map[bitbucket.MergeStrategyID]bitbucket.MergeStrategy{
	bitbucket.MergeStrategyNoFF: {
		Name:        "Merge commit",
		Description: "Always create a new merge commit",
		Flag:        "--no-ff",
	},
	bitbucket.MergeStrategyFF: {
		Name:        "Fast-forward",
		Description: "Fast-forward if possible, otherwise create a new merge commit",
		Flag:        "--ff",
	},
	bitbucket.MergeStrategyFFOnly: {
		Name:        "Fast-forward only",
		Description: "Fast-forward only; reject if the pull request cannot be fast-forwarded",
		Flag:        "--ff-only",
	},
	bitbucket.MergeStrategyRebaseNoFF: {
		Name:        "Rebase and merge",
		Description: "Rebase commits from source to target and create a merge commit",
		Flag:        "rebase + merge --no-ff",
	},
	bitbucket.MergeStrategyRebaseFFOnly: {
		Name:        "Rebase and fast-forward",
		Description: "Rebase commits from source to target branch and fast-forward",
		Flag:        "rebase + merge --ff-only",
	},
	bitbucket.MergeStrategySquash: {
		Name:        "Squash",
		Description: "Combine all commits into one new non-merge commit",
		Flag:        "--squash",
	},
	bitbucket.MergeStrategySquashFFOnly: {
		Name:        "Squash, fast-forward only",
		Description: "Combine all commits into one new non-merge commit if fast-forward is possible",
		Flag:        "--squash --ff-only",
	},
}

func mergeStrategy(id bitbucket.MergeStrategyID, enabled bool) bitbucket.MergeStrategy {
	s := _mergeStrategies[id]
	s.ID = id
	s.Enabled = enabled
	return s
}

// defaultPullRequestSettings reports the settings of a new repository:
// everything is inherited from the SCM defaults.
func defaultPullRequestSettings() bitbucket.PullRequestSettings {
	strategies := make([]bitbucket.MergeStrategy, 0, len(_mergeStrategies))
	for _, id := range bitbucket.MergeStrategyIDs() {
		strategies = append(strategies, mergeStrategy(id, id == bitbucket.MergeStrategyNoFF))
	}
	def := mergeStrategy(bitbucket.MergeStrategyNoFF, true)
	return bitbucket.PullRequestSettings{
		MergeConfig: bitbucket.MergeConfig{
			DefaultStrategy: &def,
			Strategies:      strategies,
			Type:            bitbucket.MergeConfigDefault,
		},
	}
}

// copySettings returns a deep copy of s.
func copySettings(s bitbucket.PullRequestSettings) *bitbucket.PullRequestSettings {
	out := s
	out.MergeConfig.Strategies = slices.Clone(s.MergeConfig.Strategies)
	if s.MergeConfig.DefaultStrategy != nil {
		def := *s.MergeConfig.DefaultStrategy
		out.MergeConfig.DefaultStrategy = &def
	}
	return &out
}

var _ = shambucketRESTHandler(
	"GET /projects/{projectKey}/repos/{repositorySlug}/settings/pull-requests",
	(*ShamBucket).handleGetPullRequestSettings)

func (sb *ShamBucket) handleGetPullRequestSettings(
	_ context.Context,
	req *repositoryRequest,
) (*bitbucket.PullRequestSettings, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}
	return copySettings(r.settings), nil
}

type updatePullRequestSettingsRequest struct {
	ProjectKey string `path:"projectKey" json:"-"`
	Slug       string `path:"repositorySlug" json:"-"`

	MergeConfig *struct {
		DefaultStrategy *struct {
			ID bitbucket.MergeStrategyID `json:"id"`
		} `json:"defaultStrategy"`
		Strategies []struct {
			ID bitbucket.MergeStrategyID `json:"id"`
		} `json:"strategies"`
	} `json:"mergeConfig"`

	RequiredAllApprovers     *bool `json:"requiredAllApprovers"`
	RequiredAllTasksComplete *bool `json:"requiredAllTasksComplete"`
	RequiredApprovers        *int  `json:"requiredApprovers"`
	RequiredSuccessfulBuilds *int  `json:"requiredSuccessfulBuilds"`
}

var _ = shambucketRESTHandler(
	"POST /projects/{projectKey}/repos/{repositorySlug}/settings/pull-requests",
	(*ShamBucket).handleUpdatePullRequestSettings)

// handleUpdatePullRequestSettings applies a partial update:
// fields missing from the request keep their current values.
func (sb *ShamBucket) handleUpdatePullRequestSettings(
	_ context.Context,
	req *updatePullRequestSettingsRequest,
) (*bitbucket.PullRequestSettings, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}

	settings := *copySettings(r.settings)
	if mc := req.MergeConfig; mc != nil {
		if len(mc.Strategies) == 0 || mc.DefaultStrategy == nil {
			return nil, badRequest("mergeConfig",
				"A default merge strategy and at least one enabled strategy are required.")
		}

		var ids []bitbucket.MergeStrategyID
		for _, s := range mc.Strategies {
			if _, ok := _mergeStrategies[s.ID]; !ok {
				return nil, badRequest("mergeConfig.strategies", "%q is not a valid merge strategy.", s.ID)
			}
			if !slices.Contains(ids, s.ID) {
				ids = append(ids, s.ID)
			}
		}
		if !slices.Contains(ids, mc.DefaultStrategy.ID) {
			return nil, badRequest("mergeConfig.defaultStrategy",
				"The default merge strategy %q must be one of the enabled strategies.", mc.DefaultStrategy.ID)
		}

		strategies := make([]bitbucket.MergeStrategy, len(ids))
		for i, id := range ids {
			strategies[i] = mergeStrategy(id, true)
		}
		def := mergeStrategy(mc.DefaultStrategy.ID, true)
		settings.MergeConfig = bitbucket.MergeConfig{
			DefaultStrategy: &def,
			Strategies:      strategies,
			Type:            bitbucket.MergeConfigRepository,
		}
	}

	if v := req.RequiredAllApprovers; v != nil {
		settings.RequiredAllApprovers = *v
	}
	if v := req.RequiredAllTasksComplete; v != nil {
		settings.RequiredAllTasksComplete = *v
	}
	if v := req.RequiredApprovers; v != nil {
		if *v < 0 {
			return nil, badRequest("requiredApprovers", "The number of approvers must not be negative.")
		}
		settings.RequiredApprovers = *v
	}
	if v := req.RequiredSuccessfulBuilds; v != nil {
		if *v < 0 {
			return nil, badRequest("requiredSuccessfulBuilds", "The number of builds must not be negative.")
		}
		settings.RequiredSuccessfulBuilds = *v
	}

	r.settings = settings
	return copySettings(settings), nil
}
