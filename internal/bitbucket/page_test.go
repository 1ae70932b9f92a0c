package bitbucket_test

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/bitbucket/shambucket"
)

func newShamClient(t *testing.T) (*bitbucket.Client, *shambucket.ShamBucket) {
	t.Helper()

	sb := shambucket.New(&shambucket.Options{Users: []string{"alice"}})
	srv := httptest.NewServer(sb)
	t.Cleanup(srv.Close)

	client, err := bitbucket.NewClient(srv.URL, &bitbucket.ClientOptions{
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return client, sb
}

func TestRepositoryAPI_All(t *testing.T) {
	defer bitbucket.SetPageSize(2)()

	client, _ := newShamClient(t)
	ctx := t.Context()

	project, err := client.Projects().Create(ctx, &bitbucket.CreateProject{Key: "PAGES"})
	require.NoError(t, err)
	require.Empty(t, project.Errors)

	var want []string
	for i := range 5 {
		name := fmt.Sprintf("repo-%d", i)
		repo, err := client.Repositories().Create(ctx, "PAGES", &bitbucket.CreateRepository{Name: name})
		require.NoError(t, err)
		require.Empty(t, repo.Errors)
		want = append(want, name)
	}

	var got []string
	for repo, err := range client.Repositories().All(ctx, "PAGES") {
		require.NoError(t, err)
		got = append(got, repo.Slug)
	}
	assert.Equal(t, want, got)

	t.Run("Page", func(t *testing.T) {
		page, err := client.Repositories().List(ctx, "PAGES", 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Start)
		assert.Equal(t, 2, page.Size)
		assert.False(t, page.IsLastPage)
		assert.Equal(t, 4, page.NextPageStart)

		last, err := client.Repositories().List(ctx, "PAGES", 4, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, last.Size)
		assert.True(t, last.IsLastPage)
	})

	t.Run("EarlyBreak", func(t *testing.T) {
		var n int
		for _, err := range client.Repositories().All(ctx, "PAGES") {
			require.NoError(t, err)
			n++
			if n == 3 {
				break
			}
		}
		assert.Equal(t, 3, n)
	})

	t.Run("Error", func(t *testing.T) {
		var errs []error
		for repo, err := range client.Repositories().All(ctx, "NOPE") {
			assert.Nil(t, repo)
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)

		var list bitbucket.ErrorList
		require.ErrorAs(t, errs[0], &list)
		assert.True(t, list.HasException("NoSuchProjectException"))
	})
}

func TestProjectAPI_All(t *testing.T) {
	defer bitbucket.SetPageSize(1)()

	client, _ := newShamClient(t)
	ctx := t.Context()

	for _, key := range []string{"ALPHA", "BETA", "GAMMA"} {
		project, err := client.Projects().Create(ctx, &bitbucket.CreateProject{
			Key:  key,
			Name: key + " project",
		})
		require.NoError(t, err)
		require.Empty(t, project.Errors)
	}

	var keys []string
	for project, err := range client.Projects().All(ctx, nil) {
		require.NoError(t, err)
		keys = append(keys, project.Key)
	}
	assert.Equal(t, []string{"ALPHA", "BETA", "GAMMA"}, keys)

	t.Run("Filtered", func(t *testing.T) {
		var keys []string
		for project, err := range client.Projects().All(ctx, &bitbucket.ListProjectsOptions{Name: "ta pro"}) {
			require.NoError(t, err)
			keys = append(keys, project.Key)
		}
		assert.Equal(t, []string{"BETA"}, keys)
	})
}

func TestRepositoryAPI_ListAll(t *testing.T) {
	client, _ := newShamClient(t)
	ctx := t.Context()

	for _, key := range []string{"ONE", "TWO"} {
		_, err := client.Projects().Create(ctx, &bitbucket.CreateProject{Key: key})
		require.NoError(t, err)
		for _, name := range []string{"api", "web"} {
			_, err := client.Repositories().Create(ctx, key, &bitbucket.CreateRepository{Name: name})
			require.NoError(t, err)
		}
	}

	page, err := client.Repositories().ListAll(ctx, &bitbucket.ListRepositoriesOptions{Name: "api"})
	require.NoError(t, err)
	require.Empty(t, page.Errors)

	var got []string
	for _, repo := range page.Values {
		got = append(got, repo.Project.Key+"/"+repo.Slug)
	}
	assert.Equal(t, []string{"ONE/api", "TWO/api"}, got)

	page, err = client.Repositories().ListAll(ctx, &bitbucket.ListRepositoriesOptions{ProjectName: "two"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Size)
}

func TestRepositoryAPI_Fork(t *testing.T) {
	client, _ := newShamClient(t)
	ctx := t.Context()

	for _, key := range []string{"UP", "DOWN"} {
		_, err := client.Projects().Create(ctx, &bitbucket.CreateProject{Key: key})
		require.NoError(t, err)
	}
	origin, err := client.Repositories().Create(ctx, "UP", &bitbucket.CreateRepository{
		Name:     "Library",
		Forkable: true,
	})
	require.NoError(t, err)
	require.Empty(t, origin.Errors)

	fork, err := client.Repositories().Fork(ctx, "UP", origin.Slug, &bitbucket.ForkRepository{
		Name:    "library-fork",
		Project: "DOWN",
	})
	require.NoError(t, err)
	require.Empty(t, fork.Errors)
	assert.Equal(t, "DOWN", fork.Project.Key)
	require.NotNil(t, fork.Origin)
	assert.Equal(t, "library", fork.Origin.Slug)
	assert.Contains(t, fork.WebURL(), "/projects/DOWN/repos/library-fork/browse")
	assert.Contains(t, fork.CloneURL("http"), "/scm/down/library-fork.git")
	assert.Empty(t, fork.CloneURL("ssh"))

	t.Run("NotForkable", func(t *testing.T) {
		locked, err := client.Repositories().Create(ctx, "UP", &bitbucket.CreateRepository{Name: "locked"})
		require.NoError(t, err)
		require.False(t, locked.Forkable)

		fork, err := client.Repositories().Fork(ctx, "UP", "locked", &bitbucket.ForkRepository{Project: "DOWN"})
		require.NoError(t, err)
		assert.True(t, fork.Errors.HasException("RepositoryForkDisabledException"))
	})
}

func TestRepositoryAPI_AllHooks(t *testing.T) {
	defer bitbucket.SetPageSize(3)()

	client, _ := newShamClient(t)
	ctx := t.Context()

	_, err := client.Projects().Create(ctx, &bitbucket.CreateProject{Key: "HOOKS"})
	require.NoError(t, err)
	_, err = client.Repositories().Create(ctx, "HOOKS", &bitbucket.CreateRepository{Name: "hooked"})
	require.NoError(t, err)

	var got []string
	for hook, err := range client.Repositories().AllHooks(ctx, "HOOKS", "hooked") {
		require.NoError(t, err)
		got = append(got, hook.Details.Key)
	}

	var want []string
	for _, d := range shambucket.DefaultHooks() {
		want = append(want, d.Key)
	}
	assert.Equal(t, want, got)

	t.Run("MissingRepository", func(t *testing.T) {
		for hook, err := range client.Repositories().AllHooks(ctx, "HOOKS", "missing") {
			assert.Nil(t, hook)
			var errs bitbucket.ErrorList
			require.ErrorAs(t, err, &errs)
			assert.True(t, errs.HasException("NoSuchRepositoryException"))
		}
	})
}

func TestRepositoryAPI_AllPermissions(t *testing.T) {
	defer bitbucket.SetPageSize(1)()

	client, sb := newShamClient(t)
	sb.AddUser("bob")
	sb.AddGroup("devs")
	ctx := t.Context()

	_, err := client.Projects().Create(ctx, &bitbucket.CreateProject{Key: "PERMS"})
	require.NoError(t, err)
	_, err = client.Repositories().Create(ctx, "PERMS", &bitbucket.CreateRepository{Name: "guarded"})
	require.NoError(t, err)

	repos := client.Repositories()
	for _, user := range []string{"bob", "alice"} {
		ok, err := repos.CreatePermissionsByUser(ctx, "PERMS", "guarded", bitbucket.PermissionRepoRead, user)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := repos.CreatePermissionsByGroup(ctx, "PERMS", "guarded", bitbucket.PermissionRepoAdmin, "devs")
	require.NoError(t, err)
	require.True(t, ok)

	var users []string
	for perm, err := range repos.AllPermissionsByUser(ctx, "PERMS", "guarded") {
		require.NoError(t, err)
		users = append(users, perm.Principal())
	}
	assert.Equal(t, []string{"alice", "bob"}, users)

	var groups []string
	for perm, err := range repos.AllPermissionsByGroup(ctx, "PERMS", "guarded") {
		require.NoError(t, err)
		groups = append(groups, perm.Principal()+"="+perm.Permission)
	}
	assert.Equal(t, []string{"devs=REPO_ADMIN"}, groups)
}
