package main

import "tcal/internal/cli"

func main() {
	cli.Execute()
}
