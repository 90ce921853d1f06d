package main

import "github.com/The-Promised-Neverland/sysdata/internal/cli"

func main() {
	cli.Execute()
}
