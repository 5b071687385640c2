package main

import "github.com/taskgraph/taskgraph/cmd"

func main() {
	cmd.Execute()
}
