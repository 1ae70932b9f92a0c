package bitbucket

import (
	"context"
	"fmt"
	"iter"
)

// Repository permission levels.
const (
	PermissionRepoRead  = "REPO_READ"
	PermissionRepoWrite = "REPO_WRITE"
	PermissionRepoAdmin = "REPO_ADMIN"
)

// User is a Bitbucket Server user.
type User struct {
	ID           int    `json:"id,omitempty"`
	Name         string `json:"name"`
	Slug         string `json:"slug,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Active       bool   `json:"active,omitempty"`
	Type         string `json:"type,omitempty"` // NORMAL or SERVICE
}

// Group is a Bitbucket Server group.
type Group struct {
	Name string `json:"name"`
}

// Permission is a permission granted on a repository
// to either a user or a group.
type Permission struct {
	User       *User  `json:"user,omitempty"`
	Group      *Group `json:"group,omitempty"`
	Permission string `json:"permission"`
}

// Principal returns the name of the user or group holding the permission.
func (p *Permission) Principal() string {
	switch {
	case p.User != nil:
		return p.User.Name
	case p.Group != nil:
		return p.Group.Name
	default:
		return ""
	}
}

// principalKind is the path segment for a kind of principal.
type principalKind string

const (
	principalUser  principalKind = "users"
	principalGroup principalKind = "groups"
)

func permissionsPath(project, slug string, kind principalKind) string {
	return reposPath(project, slug, "permissions", string(kind))
}

type grantParams struct {
	Permission string `url:"permission,omitempty"`
	Name       string `url:"name"`
}

// ListPermissionsByUser retrieves a page of users
// granted an explicit permission on the repository.
func (r *RepositoryAPI) ListPermissionsByUser(
	ctx context.Context,
	project, slug string,
	start, limit int,
) (*PermissionsPage, error) {
	return r.listPermissions(ctx, project, slug, principalUser, start, limit)
}

// ListPermissionsByGroup retrieves a page of groups
// granted an explicit permission on the repository.
func (r *RepositoryAPI) ListPermissionsByGroup(
	ctx context.Context,
	project, slug string,
	start, limit int,
) (*PermissionsPage, error) {
	return r.listPermissions(ctx, project, slug, principalGroup, start, limit)
}

// AllPermissionsByUser iterates over all user permissions on the repository.
func (r *RepositoryAPI) AllPermissionsByUser(ctx context.Context, project, slug string) iter.Seq2[*Permission, error] {
	return allPages(ctx, func(ctx context.Context, start, limit int) (*PermissionsPage, error) {
		return r.ListPermissionsByUser(ctx, project, slug, start, limit)
	})
}

// AllPermissionsByGroup iterates over all group permissions on the repository.
func (r *RepositoryAPI) AllPermissionsByGroup(ctx context.Context, project, slug string) iter.Seq2[*Permission, error] {
	return allPages(ctx, func(ctx context.Context, start, limit int) (*PermissionsPage, error) {
		return r.ListPermissionsByGroup(ctx, project, slug, start, limit)
	})
}

func (r *RepositoryAPI) listPermissions(
	ctx context.Context,
	project, slug string,
	kind principalKind,
	start, limit int,
) (*PermissionsPage, error) {
	page, err := getPage[Permission](ctx, r.client,
		permissionsPath(project, slug, kind),
		&pageParams{Start: start, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list %s permissions: %w", kind, err)
	}
	return page, nil
}

// CreatePermissionsByUser grants a permission on the repository to a user.
// Returns false if the user does not exist or the grant was refused.
func (r *RepositoryAPI) CreatePermissionsByUser(
	ctx context.Context,
	project, slug, permission, user string,
) (bool, error) {
	return r.grant(ctx, project, slug, principalUser, permission, user)
}

// CreatePermissionsByGroup grants a permission on the repository to a group.
// Returns false if the group does not exist or the grant was refused.
func (r *RepositoryAPI) CreatePermissionsByGroup(
	ctx context.Context,
	project, slug, permission, group string,
) (bool, error) {
	return r.grant(ctx, project, slug, principalGroup, permission, group)
}

func (r *RepositoryAPI) grant(
	ctx context.Context,
	project, slug string,
	kind principalKind,
	permission, name string,
) (bool, error) {
	errs, err := r.client.put(ctx,
		permissionsPath(project, slug, kind),
		&grantParams{Permission: permission, Name: name}, nil, nil)
	if err != nil {
		return false, fmt.Errorf("grant %s permission: %w", kind, err)
	}
	if len(errs) > 0 {
		r.client.log.Debug("Permission not granted",
			"principal", name, "permission", permission, "errors", errs.Error())
	}
	return len(errs) == 0, nil
}

// DeletePermissionsByUser revokes all permissions on the repository from a user.
// Returns false if the user does not exist.
func (r *RepositoryAPI) DeletePermissionsByUser(
	ctx context.Context,
	project, slug, user string,
) (bool, error) {
	return r.revoke(ctx, project, slug, principalUser, user)
}

// DeletePermissionsByGroup revokes all permissions on the repository from a group.
//
// Bitbucket Server does not check that the group exists,
// so this succeeds for unknown groups.
func (r *RepositoryAPI) DeletePermissionsByGroup(
	ctx context.Context,
	project, slug, group string,
) (bool, error) {
	return r.revoke(ctx, project, slug, principalGroup, group)
}

func (r *RepositoryAPI) revoke(
	ctx context.Context,
	project, slug string,
	kind principalKind,
	name string,
) (bool, error) {
	errs, err := r.client.delete(ctx,
		permissionsPath(project, slug, kind),
		&grantParams{Name: name}, nil)
	if err != nil {
		return false, fmt.Errorf("revoke %s permission: %w", kind, err)
	}
	return len(errs) == 0, nil
}
