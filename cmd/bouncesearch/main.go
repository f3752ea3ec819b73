package main

import (
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/lox/bouncesearch/internal/physics"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	LogLevel string           `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	Search   SearchCmd        `cmd:"" help:"Search every seed and sub-pixel offset for the longest bounce sequence"`
	Run      RunCmd           `cmd:"" help:"Replay a single configuration"`
	Cycles   CyclesCmd        `cmd:"" help:"Show the cycle structure of the random register"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bouncesearch"),
		kong.Description("Exhaustive search for the longest bounce sequence of a seeded actor"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		cliVars(),
	)

	logger, err := newLogger(cli.LogLevel)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}

// cliVars holds the values interpolated into flag defaults and help.
func cliVars() kong.Vars {
	return kong.Vars{
		"version":    version,
		"max_frames": strconv.Itoa(physics.DefaultMaxFrames),
	}
}
