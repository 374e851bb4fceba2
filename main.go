package main

import "github.com/gaurav-prasanna/readycrawl/cmd"

func main() {
	cmd.Execute()
}
