package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	LogLevel string `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

type CLI struct {
	Globals `embed:""`

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the pool server"`
	Create  CreateCmd        `cmd:"" help:"Create a room and take seat 0"`
	Join    JoinCmd          `cmd:"" help:"Join a room and take seat 1"`
	Room    RoomCmd          `cmd:"" help:"Show a room"`
	Name    NameCmd          `cmd:"" help:"Set your display name"`
	Start   StartCmd         `cmd:"" help:"Start the game once both seats are filled"`
	State   StateCmd         `cmd:"" help:"Show the table"`
	Turn    TurnCmd          `cmd:"" help:"Post a shot"`
	Win     WinCmd           `cmd:"" help:"Show whether the match is decided"`
	Last    LastCmd          `cmd:"" help:"Show the previous turn"`
	Watch   WatchCmd         `cmd:"" help:"Watch a room live"`
}

func main() {
	cli := CLI{Globals: Globals{Stdout: os.Stdout, Stderr: os.Stderr}}
	ctx := kong.Parse(&cli,
		kong.Name("pandapool"),
		kong.Description("Two-player 8-ball pool match server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
