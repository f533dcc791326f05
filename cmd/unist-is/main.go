package main

import "github.com/syntax-tree/unist-util-is/cmd"

func main() {
	cmd.Execute()
}
