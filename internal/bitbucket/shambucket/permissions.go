package shambucket

import (
	"context"
	"maps"
	"slices"
	"strings"

	"go.abhg.dev/bbs/internal/bitbucket"
)

var _repoPermissions = []string{
	bitbucket.PermissionRepoRead,
	bitbucket.PermissionRepoWrite,
	bitbucket.PermissionRepoAdmin,
}

type listPermissionsRequest struct {
	PageRequest

	ProjectKey string `path:"projectKey" json:"-"`
	Slug       string `path:"repositorySlug" json:"-"`
}

type permissionRequest struct {
	ProjectKey string `path:"projectKey" json:"-"`
	Slug       string `path:"repositorySlug" json:"-"`
	Permission string `query:"permission" json:"-"`
	Name       string `query:"name" json:"-"`
}

func (req *permissionRequest) validate(needPermission bool) error {
	if req.Name == "" {
		return badRequest("name", "A name is required.")
	}
	if needPermission && !slices.Contains(_repoPermissions, req.Permission) {
		return badRequest("permission", "%q is not a valid repository permission.", req.Permission)
	}
	return nil
}

var (
	_ = shambucketRESTHandler(
		"GET /projects/{projectKey}/repos/{repositorySlug}/permissions/users",
		(*ShamBucket).handleListUserPermissions)
	_ = shambucketRESTHandler(
		"PUT /projects/{projectKey}/repos/{repositorySlug}/permissions/users",
		(*ShamBucket).handleGrantUserPermission)
	_ = shambucketRESTHandler(
		"DELETE /projects/{projectKey}/repos/{repositorySlug}/permissions/users",
		(*ShamBucket).handleRevokeUserPermission)
)

func (sb *ShamBucket) handleListUserPermissions(
	_ context.Context,
	req *listPermissionsRequest,
) (*bitbucket.PermissionsPage, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}

	perms := make([]bitbucket.Permission, 0, len(r.userPerms))
	for _, name := range slices.Sorted(maps.Keys(r.userPerms)) {
		user := *sb.users[strings.ToLower(name)]
		perms = append(perms, bitbucket.Permission{
			User:       &user,
			Permission: r.userPerms[name],
		})
	}
	return paginate(perms, req.PageRequest), nil
}

func (sb *ShamBucket) handleGrantUserPermission(_ context.Context, req *permissionRequest) (*struct{}, error) {
	if err := req.validate(true); err != nil {
		return nil, err
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}

	user, ok := sb.users[strings.ToLower(req.Name)]
	if !ok {
		return nil, noSuchUser(req.Name)
	}
	r.userPerms[user.Name] = req.Permission
	return nil, nil
}

func (sb *ShamBucket) handleRevokeUserPermission(_ context.Context, req *permissionRequest) (*struct{}, error) {
	if err := req.validate(false); err != nil {
		return nil, err
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}

	user, ok := sb.users[strings.ToLower(req.Name)]
	if !ok {
		return nil, noSuchUser(req.Name)
	}
	delete(r.userPerms, user.Name)
	return nil, nil
}

func noSuchUser(name string) error {
	return notFound("com.atlassian.bitbucket.user.NoSuchUserException",
		"No such user '%s'", name)
}

var (
	_ = shambucketRESTHandler(
		"GET /projects/{projectKey}/repos/{repositorySlug}/permissions/groups",
		(*ShamBucket).handleListGroupPermissions)
	_ = shambucketRESTHandler(
		"PUT /projects/{projectKey}/repos/{repositorySlug}/permissions/groups",
		(*ShamBucket).handleGrantGroupPermission)
	_ = shambucketRESTHandler(
		"DELETE /projects/{projectKey}/repos/{repositorySlug}/permissions/groups",
		(*ShamBucket).handleRevokeGroupPermission)
)

func (sb *ShamBucket) handleListGroupPermissions(
	_ context.Context,
	req *listPermissionsRequest,
) (*bitbucket.PermissionsPage, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}

	perms := make([]bitbucket.Permission, 0, len(r.groupPerms))
	for _, name := range slices.Sorted(maps.Keys(r.groupPerms)) {
		perms = append(perms, bitbucket.Permission{
			Group:      &bitbucket.Group{Name: name},
			Permission: r.groupPerms[name],
		})
	}
	return paginate(perms, req.PageRequest), nil
}

func (sb *ShamBucket) handleGrantGroupPermission(_ context.Context, req *permissionRequest) (*struct{}, error) {
	if err := req.validate(true); err != nil {
		return nil, err
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}

	if _, ok := sb.groups[req.Name]; !ok {
		return nil, notFound("com.atlassian.bitbucket.user.NoSuchGroupException",
			"The group '%s' does not exist.", req.Name)
	}
	r.groupPerms[req.Name] = req.Permission
	return nil, nil
}

// handleRevokeGroupPermission does not check that the group exists,
// matching Bitbucket Server.
func (sb *ShamBucket) handleRevokeGroupPermission(_ context.Context, req *permissionRequest) (*struct{}, error) {
	if err := req.validate(false); err != nil {
		return nil, err
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	_, r, err := sb.repository(req.ProjectKey, req.Slug)
	if err != nil {
		return nil, err
	}
	delete(r.groupPerms, req.Name)
	return nil, nil
}
