package main

import "sound-server/cmd"

func main() {
	cmd.Execute()
}
