package main

import "github.com/mcoot/multiplayer-demo/internal/cli"

func main() {
	cli.Execute()
}
