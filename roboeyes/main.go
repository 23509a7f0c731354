// Package main runs the roboeyes command-line tool.
package main

import "github.com/sarchlab/roboeyes/roboeyes/cmd"

func main() {
	cmd.Execute()
}
