package main

import (
	"errors"
	"fmt"
	"strings"

	"go.abhg.dev/bbs/internal/bitbucket"
)

type repoPermsCmd struct {
	List   repoPermsListCmd   `cmd:"" aliases:"ls" help:"List explicit permissions"`
	Grant  repoPermsGrantCmd  `cmd:"" help:"Grant a permission to a user or group"`
	Revoke repoPermsRevokeCmd `cmd:"" help:"Revoke all permissions of a user or group"`
}

// principalFlags selects a user or a group.
type principalFlags struct {
	User  string `short:"u" placeholder:"NAME" help:"Name of the user"`
	Group string `short:"g" placeholder:"NAME" help:"Name of the group"`
}

func (f *principalFlags) validate() error {
	switch {
	case f.User == "" && f.Group == "":
		return errors.New("one of --user or --group is required")
	case f.User != "" && f.Group != "":
		return errors.New("only one of --user or --group may be used")
	}
	return nil
}

func (f *principalFlags) String() string {
	if f.User != "" {
		return "user " + f.User
	}
	return "group " + f.Group
}

// parseRepoPermission accepts "read", "write", or "admin"
// in any case, with or without the REPO_ prefix.
func parseRepoPermission(s string) (string, error) {
	switch strings.TrimPrefix(strings.ToLower(s), "repo_") {
	case "read":
		return bitbucket.PermissionRepoRead, nil
	case "write":
		return bitbucket.PermissionRepoWrite, nil
	case "admin":
		return bitbucket.PermissionRepoAdmin, nil
	default:
		return "", fmt.Errorf("unknown permission %q: expected read, write, or admin", s)
	}
}
