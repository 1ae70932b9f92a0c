package main

type authCmd struct {
	Login  authLoginCmd  `cmd:"" help:"Log in to Bitbucket Server"`
	Status authStatusCmd `cmd:"" help:"Show current login status"`
	Logout authLogoutCmd `cmd:"" help:"Log out of Bitbucket Server"`
}
