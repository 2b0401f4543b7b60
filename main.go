package main

import "github.com/mvarnah/wingman/cmd"

func main() {
	cmd.Execute()
}
