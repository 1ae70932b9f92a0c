package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/cli"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/text"
	"go.abhg.dev/bbs/internal/ui"
)

type repoSettingsSetCmd struct {
	repoArgs

	DefaultStrategy   string   `placeholder:"ID" help:"Default merge strategy"`
	Strategies        []string `name:"strategy" placeholder:"ID" help:"Enable this merge strategy. Repeat to enable several. Replaces the enabled strategies."`
	RequiredApprovers *int     `placeholder:"N" help:"Number of approvals required to merge"`
	RequiredBuilds    *int     `placeholder:"N" help:"Number of successful builds required to merge"`
	AllApprovers      *bool    `placeholder:"BOOL" help:"Require all reviewers to approve (true or false)"`
	AllTasks          *bool    `placeholder:"BOOL" help:"Require all tasks to be resolved (true or false)"`
}

func (*repoSettingsSetCmd) Help() string {
	ids := make([]string, 0, len(bitbucket.MergeStrategyIDs()))
	for _, id := range bitbucket.MergeStrategyIDs() {
		ids = append(ids, string(id))
	}

	return text.Dedent(fmt.Sprintf(`
		Settings that are not specified keep their current values.

		Merge strategies are identified by ID:
		%[2]s.
		The default strategy must be among the enabled strategies.
		If it isn't, it is enabled as well.

		For example:

			%[1]s repo settings set PRJ repo --strategy ff-only --strategy squash --default-strategy squash
	`, cli.Name(), strings.Join(ids, ", ")))
}

func (cmd *repoSettingsSetCmd) Run(
	ctx context.Context,
	log *silog.Logger,
	view ui.View,
	client *bitbucket.Client,
) error {
	repos := client.Repositories()

	current, err := repos.PullRequestSettings(ctx, cmd.Project, cmd.Slug)
	if err != nil {
		return err
	}
	if err := current.Errors.Err(); err != nil {
		return fmt.Errorf("get pull request settings of %v: %w", &cmd.repoArgs, err)
	}

	req, err := cmd.apply(current)
	if err != nil {
		return err
	}

	updated, err := repos.UpdatePullRequestSettings(ctx, cmd.Project, cmd.Slug, req)
	if err != nil {
		return err
	}
	if err := updated.Errors.Err(); err != nil {
		return fmt.Errorf("update pull request settings of %v: %w", &cmd.repoArgs, err)
	}

	log.Infof("Updated pull request settings of %v", &cmd.repoArgs)
	return renderPullRequestSettings(view, updated)
}

// apply builds an update request from the current settings
// and the flags that were set.
func (cmd *repoSettingsSetCmd) apply(current *bitbucket.PullRequestSettings) (*bitbucket.CreatePullRequestSettings, error) {
	if cmd.DefaultStrategy == "" && len(cmd.Strategies) == 0 &&
		cmd.RequiredApprovers == nil && cmd.RequiredBuilds == nil &&
		cmd.AllApprovers == nil && cmd.AllTasks == nil {
		return nil, errors.New("no settings to change")
	}

	// Updates replace the merge configuration,
	// so the current one is always sent back.
	mc, err := cmd.mergeConfig(current.MergeConfig)
	if err != nil {
		return nil, err
	}

	req := &bitbucket.CreatePullRequestSettings{
		MergeConfig:              mc,
		RequiredAllApprovers:     current.RequiredAllApprovers,
		RequiredAllTasksComplete: current.RequiredAllTasksComplete,
		RequiredApprovers:        current.RequiredApprovers,
		RequiredSuccessfulBuilds: current.RequiredSuccessfulBuilds,
	}

	if v := cmd.RequiredApprovers; v != nil {
		if *v < 0 {
			return nil, errors.New("required approvers must not be negative")
		}
		req.RequiredApprovers = *v
	}
	if v := cmd.RequiredBuilds; v != nil {
		if *v < 0 {
			return nil, errors.New("required builds must not be negative")
		}
		req.RequiredSuccessfulBuilds = *v
	}
	if v := cmd.AllApprovers; v != nil {
		req.RequiredAllApprovers = *v
	}
	if v := cmd.AllTasks; v != nil {
		req.RequiredAllTasksComplete = *v
	}
	return req, nil
}

func (cmd *repoSettingsSetCmd) mergeConfig(current bitbucket.MergeConfig) (bitbucket.MergeConfig, error) {
	var enabled []bitbucket.MergeStrategyID
	if len(cmd.Strategies) > 0 {
		for _, s := range cmd.Strategies {
			id, err := bitbucket.ParseMergeStrategyID(s)
			if err != nil {
				return bitbucket.MergeConfig{}, err
			}
			if !slices.Contains(enabled, id) {
				enabled = append(enabled, id)
			}
		}
	} else {
		for _, s := range current.Strategies {
			if s.Enabled {
				enabled = append(enabled, s.ID)
			}
		}
	}

	var def bitbucket.MergeStrategyID
	switch {
	case cmd.DefaultStrategy != "":
		id, err := bitbucket.ParseMergeStrategyID(cmd.DefaultStrategy)
		if err != nil {
			return bitbucket.MergeConfig{}, err
		}
		def = id
	case current.DefaultStrategy != nil && slices.Contains(enabled, current.DefaultStrategy.ID):
		def = current.DefaultStrategy.ID
	case len(enabled) > 0:
		def = enabled[0]
	default:
		return bitbucket.MergeConfig{}, errors.New("at least one merge strategy must be enabled")
	}
	if !slices.Contains(enabled, def) {
		enabled = append(enabled, def)
	}

	strategies := make([]bitbucket.MergeStrategy, len(enabled))
	for i, id := range enabled {
		strategies[i] = bitbucket.MergeStrategy{ID: id, Enabled: true}
	}
	return bitbucket.MergeConfig{
		DefaultStrategy: &bitbucket.MergeStrategy{ID: def, Enabled: true},
		Strategies:      strategies,
	}, nil
}
