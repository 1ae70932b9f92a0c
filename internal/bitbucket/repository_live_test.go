package bitbucket_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/bitbucket/bbtest"
)

// TestRepositoryAPILive exercises the repository API end to end.
//
// Subtests depend on each other and run in order:
// a repository is created, inspected, reconfigured, and deleted
// inside a project that exists for the duration of the test.
//
// Run with -update to record fixtures against a real server.
func TestRepositoryAPILive(t *testing.T) {
	srv := bbtest.Open(t, t.Name(), nil)
	t.Logf("Running against %v server", srv.Mode)

	api := srv.Client.Repositories()
	random := func(name string, gen func(int) string) string {
		return srv.Value(name, func() string { return gen(10) })
	}

	projectKey := random("projectKey", bbtest.RandomLetters)
	repoName := random("repoName", bbtest.RandomLetters)
	var hookKey string

	project, err := srv.Client.Projects().Create(t.Context(), &bitbucket.CreateProject{Key: projectKey})
	require.NoError(t, err)
	require.Empty(t, project.Errors)
	require.True(t, strings.EqualFold(projectKey, project.Key))
	t.Cleanup(func() {
		// t.Context is done by the time cleanup runs.
		ctx := context.Background()
		if t.Failed() {
			// Leftover repositories keep the project from being deleted.
			_, _ = api.Delete(ctx, projectKey, repoName)
		}

		ok, err := srv.Client.Projects().Delete(ctx, projectKey)
		if assert.NoError(t, err) {
			assert.True(t, ok, "delete project %v", projectKey)
		}
	})

	step := func(name string, fn func(t *testing.T)) {
		if !t.Run(name, fn) {
			t.FailNow()
		}
	}

	// Failures that do not depend on the repository.

	t.Run("DeleteRepositoryNonExistent", func(t *testing.T) {
		ok, err := api.Delete(t.Context(), projectKey, random("missingRepo", bbtest.RandomLetters))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("GetRepositoryNonExistent", func(t *testing.T) {
		repo, err := api.Get(t.Context(), projectKey, random("missingRepo", bbtest.RandomLetters))
		require.NoError(t, err)
		require.NotNil(t, repo)
		assert.NotEmpty(t, repo.Errors)
	})

	t.Run("CreateRepositoryWithIllegalName", func(t *testing.T) {
		repo, err := api.Create(t.Context(), projectKey, &bitbucket.CreateRepository{
			Name:     "!-_999-9*",
			Forkable: true,
		})
		require.NoError(t, err)
		require.NotNil(t, repo)
		assert.NotEmpty(t, repo.Errors)
	})

	t.Run("ListHooksOnError", func(t *testing.T) {
		page, err := api.ListHooks(t.Context(), projectKey, random("missingRepoForHooks", bbtest.RandomString), 0, 100)
		require.NoError(t, err)
		require.NotNil(t, page)
		assert.NotEmpty(t, page.Errors)
		assert.Empty(t, page.Values)
	})

	// Repository lifecycle.

	step("CreateRepository", func(t *testing.T) {
		repo, err := api.Create(t.Context(), projectKey, &bitbucket.CreateRepository{
			Name:     repoName,
			Forkable: true,
		})
		require.NoError(t, err)
		require.Empty(t, repo.Errors)
		assert.True(t, strings.EqualFold(repoName, repo.Name), "name: %v", repo.Name)
	})

	step("GetRepository", func(t *testing.T) {
		repo, err := api.Get(t.Context(), projectKey, repoName)
		require.NoError(t, err)
		require.Empty(t, repo.Errors)
		assert.True(t, strings.EqualFold(repoName, repo.Name), "name: %v", repo.Name)
	})

	t.Run("ListRepositories", func(t *testing.T) {
		page, err := api.List(t.Context(), projectKey, 0, 100)
		require.NoError(t, err)
		require.Empty(t, page.Errors)
		assert.Positive(t, page.Size)

		var matches int
		for _, repo := range page.Values {
			if strings.EqualFold(repo.Slug, repoName) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "repositories matching %v", repoName)
	})

	// Pull request settings.

	step("GetPullRequestSettings", func(t *testing.T) {
		settings, err := api.PullRequestSettings(t.Context(), projectKey, repoName)
		require.NoError(t, err)
		require.Empty(t, settings.Errors)
		assert.NotEmpty(t, settings.MergeConfig.Strategies)
	})

	t.Run("UpdatePullRequestSettings", func(t *testing.T) {
		squash := bitbucket.MergeStrategy{ID: bitbucket.MergeStrategySquash}
		settings, err := api.UpdatePullRequestSettings(t.Context(), projectKey, repoName,
			&bitbucket.CreatePullRequestSettings{
				MergeConfig: bitbucket.MergeConfig{
					DefaultStrategy: &squash,
					Strategies:      []bitbucket.MergeStrategy{squash},
					Type:            bitbucket.MergeConfigRepository,
				},
				RequiredAllApprovers:     false,
				RequiredAllTasksComplete: false,
				RequiredApprovers:        0,
				RequiredSuccessfulBuilds: 1,
			})
		require.NoError(t, err)
		require.Empty(t, settings.Errors)
		assert.NotEmpty(t, settings.MergeConfig.Strategies)
		if assert.NotNil(t, settings.MergeConfig.DefaultStrategy) {
			assert.Equal(t, bitbucket.MergeStrategySquash, settings.MergeConfig.DefaultStrategy.ID)
		}
		assert.Equal(t, 1, settings.RequiredSuccessfulBuilds)
	})

	// Permissions.

	t.Run("ListPermissionsByUser", func(t *testing.T) {
		page, err := api.ListPermissionsByUser(t.Context(), projectKey, repoName, 0, 100)
		require.NoError(t, err)
		assert.Empty(t, page.Values)
	})

	step("ListPermissionsByGroup", func(t *testing.T) {
		page, err := api.ListPermissionsByGroup(t.Context(), projectKey, repoName, 0, 100)
		require.NoError(t, err)
		assert.Empty(t, page.Values)
	})

	t.Run("CreatePermissionsByGroupNonExistent", func(t *testing.T) {
		ok, err := api.CreatePermissionsByGroup(t.Context(), projectKey, repoName,
			bitbucket.PermissionRepoWrite, random("missingGroup", bbtest.RandomString))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DeletePermissionsByGroupNonExistent", func(t *testing.T) {
		ok, err := api.DeletePermissionsByGroup(t.Context(), projectKey, repoName,
			random("missingGroup", bbtest.RandomString))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("PermissionsByGroup", func(t *testing.T) {
		group := srv.Config.Group

		ok, err := api.CreatePermissionsByGroup(t.Context(), projectKey, repoName,
			bitbucket.PermissionRepoWrite, group)
		require.NoError(t, err)
		require.True(t, ok)

		page, err := api.ListPermissionsByGroup(t.Context(), projectKey, repoName, 0, 100)
		require.NoError(t, err)
		require.Len(t, page.Values, 1)
		assert.Equal(t, group, page.Values[0].Principal())
		assert.Equal(t, bitbucket.PermissionRepoWrite, page.Values[0].Permission)

		ok, err = api.DeletePermissionsByGroup(t.Context(), projectKey, repoName, group)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("PermissionsByUser", func(t *testing.T) {
		user := srv.Config.User

		ok, err := api.CreatePermissionsByUser(t.Context(), projectKey, repoName,
			bitbucket.PermissionRepoWrite, user)
		require.NoError(t, err)
		require.True(t, ok)

		page, err := api.ListPermissionsByUser(t.Context(), projectKey, repoName, 0, 100)
		require.NoError(t, err)
		require.Len(t, page.Values, 1)
		assert.True(t, strings.EqualFold(user, page.Values[0].Principal()))

		ok, err = api.DeletePermissionsByUser(t.Context(), projectKey, repoName, user)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("CreatePermissionsByUserNonExistent", func(t *testing.T) {
		ok, err := api.CreatePermissionsByUser(t.Context(), projectKey, repoName,
			bitbucket.PermissionRepoWrite, random("missingUser", bbtest.RandomString))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DeletePermissionsByUserNonExistent", func(t *testing.T) {
		ok, err := api.DeletePermissionsByUser(t.Context(), projectKey, repoName,
			random("missingUser", bbtest.RandomString))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	// Hooks.

	missingHook := func(name string) string {
		return random(name+"Plugin", bbtest.RandomLetters) + ":" + random(name+"Module", bbtest.RandomLetters)
	}

	for _, tt := range []struct {
		name string
		call func(t *testing.T, key string) (*bitbucket.Hook, error)
	}{
		{"GetHookOnError", func(t *testing.T, key string) (*bitbucket.Hook, error) {
			return api.Hook(t.Context(), projectKey, repoName, key)
		}},
		{"EnableHookOnError", func(t *testing.T, key string) (*bitbucket.Hook, error) {
			return api.EnableHook(t.Context(), projectKey, repoName, key)
		}},
		{"DisableHookOnError", func(t *testing.T, key string) (*bitbucket.Hook, error) {
			return api.DisableHook(t.Context(), projectKey, repoName, key)
		}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			hook, err := tt.call(t, missingHook(tt.name))
			require.NoError(t, err)
			require.NotNil(t, hook)
			assert.NotEmpty(t, hook.Errors)
			assert.False(t, hook.Enabled)
		})
	}

	step("ListHooks", func(t *testing.T) {
		page, err := api.ListHooks(t.Context(), projectKey, repoName, 0, 100)
		require.NoError(t, err)
		require.Empty(t, page.Errors)
		assert.Positive(t, page.Size)

		// Hooks that need configuration cannot be enabled as is.
		for _, hook := range page.Values {
			if !hook.Details.NeedsConfig() {
				require.NotEmpty(t, hook.Details.Key)
				hookKey = hook.Details.Key
				break
			}
		}
		require.NotEmpty(t, hookKey, "no hook without configuration")
	})

	step("GetHook", func(t *testing.T) {
		hook, err := api.Hook(t.Context(), projectKey, repoName, hookKey)
		require.NoError(t, err)
		require.Empty(t, hook.Errors)
		assert.Equal(t, hookKey, hook.Details.Key)
		assert.False(t, hook.Enabled)
	})

	step("EnableHook", func(t *testing.T) {
		hook, err := api.EnableHook(t.Context(), projectKey, repoName, hookKey)
		require.NoError(t, err)
		require.Empty(t, hook.Errors)
		assert.Equal(t, hookKey, hook.Details.Key)
		assert.True(t, hook.Enabled)
	})

	t.Run("DisableHook", func(t *testing.T) {
		hook, err := api.DisableHook(t.Context(), projectKey, repoName, hookKey)
		require.NoError(t, err)
		require.Empty(t, hook.Errors)
		assert.Equal(t, hookKey, hook.Details.Key)
		assert.False(t, hook.Enabled)
	})

	// Runs last so the project can be deleted.
	t.Run("DeleteRepository", func(t *testing.T) {
		ok, err := api.Delete(t.Context(), projectKey, repoName)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
