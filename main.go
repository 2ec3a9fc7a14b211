package main

import "github.com/kozaktomas/album-render/cmd"

func main() {
	cmd.Execute()
}
