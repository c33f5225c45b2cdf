package main

import "absence-tracker/cmd/absence-cli/cmd"

func main() {
	cmd.Execute()
}
