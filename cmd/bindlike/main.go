package main

import "github.com/edgekit/bindlike/internal/cli"

func main() {
	cli.Execute()
}
