package main

import "github.com/aweris/castore/cmd/castore/cmd"

func main() {
	cmd.Execute()
}
