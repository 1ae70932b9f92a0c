package main

type projectCmd struct {
	Create projectCreateCmd `cmd:"" aliases:"c" help:"Create a project"`
	Get    projectGetCmd    `cmd:"" help:"Show a project"`
	Delete projectDeleteCmd `cmd:"" aliases:"rm" help:"Delete an empty project"`
	List   projectListCmd   `cmd:"" aliases:"ls" help:"List projects"`
}
