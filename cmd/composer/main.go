package main

import "github.com/deepnoodle-ai/composer/cmd/composer/cli"

var version = "0.1.0-dev"

func main() {
	cli.Execute(version)
}
