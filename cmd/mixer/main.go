package main

import "github.com/goblinsan/mixer/cmd/mixer/commands"

func main() {
	commands.Execute()
}
