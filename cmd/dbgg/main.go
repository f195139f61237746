package main

import (
	"context"

	"github.com/beatX-bot/discordbots-go/cmd/dbgg/commands"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	commands.SetVersion(version, commit)
	commands.ExecuteContext(context.Background())
}
