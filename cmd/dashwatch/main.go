package main

import "github.com/dalemusser/stratadash/internal/cli"

func main() {
	cli.Execute()
}
