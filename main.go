package main

import "github.com/xld/xld-go/internal/cli"

func main() {
	cli.Execute()
}
