package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/vzt7/unbuild/cmd/unbuild/commands"
	"github.com/vzt7/unbuild/internal/foundation/errors"
	"github.com/vzt7/unbuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("unbuild"),
		kong.Description("Build JavaScript and TypeScript libraries to CommonJS and ES modules."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default()}
	err := parser.Run(global, cli)
	errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}
