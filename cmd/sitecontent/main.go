package main

import "github.com/goliatone/go-sitecontent/cmd/sitecontent/internal/cli"

func main() {
	cli.Execute()
}
