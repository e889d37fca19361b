package main

import "github.com/startcommunity/startbot/cmd/startctl/commands"

func main() {
	commands.Execute()
}
