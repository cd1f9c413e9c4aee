package main

import "github.com/Soptq/shapeshift-lib/internal/cli"

func main() {
	cli.Execute()
}
