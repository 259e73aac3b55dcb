package main

import "texture-manager/cmd"

func main() {
	cmd.Execute()
}
