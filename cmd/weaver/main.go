package main

import "github.com/weaver-labs/weaver/internal/cli"

func main() {
	cli.Execute()
}
