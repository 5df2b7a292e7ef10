package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the table server"`
	Simulate SimulateCmd      `cmd:"" help:"Play bot hands on a local table"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate hands and estimate equity"`
	Account  AccountCmd       `cmd:"" help:"Manage player accounts"`
	Play     PlayCmd          `cmd:"" help:"Play or watch a table in the terminal"`
	Tables   TablesCmd        `cmd:"" help:"List the tables on a server"`
	History  HistoryCmd       `cmd:"" help:"Download a table's hand history (PHH)"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokeronline"),
		kong.Description("Texas Hold'em table server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
