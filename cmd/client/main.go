package main

import "jobtag/cmd/client/cmd"

func main() {
	cmd.Execute()
}
