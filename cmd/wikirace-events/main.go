package main

import "github.com/pfrederiksen/wikirace-events/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
