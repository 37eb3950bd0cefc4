package main

import "railio/cmd/railio-cli/cmd"

func main() {
	cmd.Execute()
}
