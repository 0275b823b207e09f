package main

import (
	"github.com/alecthomas/kong"

	"github.com/stenstad/inkwell/cmd/inkwell/commands"
	"github.com/stenstad/inkwell/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("inkwell"),
		kong.Description("Build a personal blog and resume site from Markdown, SCSS, and templates."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{})
	ctx.FatalIfErrorf(err)
}
