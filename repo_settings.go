package main

type repoSettingsCmd struct {
	Get repoSettingsGetCmd `cmd:"" help:"Show pull request settings"`
	Set repoSettingsSetCmd `cmd:"" help:"Change pull request settings"`
}
