package main

type repoCmd struct {
	Create   repoCreateCmd   `cmd:"" aliases:"c" help:"Create a repository"`
	Get      repoGetCmd      `cmd:"" help:"Show a repository"`
	Delete   repoDeleteCmd   `cmd:"" aliases:"rm" help:"Delete a repository"`
	List     repoListCmd     `cmd:"" aliases:"ls" help:"List repositories"`
	Fork     repoForkCmd     `cmd:"" help:"Fork a repository"`
	Browse   repoBrowseCmd   `cmd:"" help:"Open a repository in a web browser"`
	Settings repoSettingsCmd `cmd:"" help:"Manage pull request settings"`
	Perms    repoPermsCmd    `cmd:"" aliases:"permissions" help:"Manage repository permissions"`
	Hook     repoHookCmd     `cmd:"" aliases:"hooks" help:"Manage repository hooks"`
}

// repoArgs identifies a repository.
type repoArgs struct {
	Project string `arg:"" help:"Key of the project holding the repository"`
	Slug    string `arg:"" help:"Slug of the repository"`
}

func (a *repoArgs) String() string {
	return a.Project + "/" + a.Slug
}
