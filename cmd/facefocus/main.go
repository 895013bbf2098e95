package main

import "github.com/JCookit/MMM-OneDrive-sub001/cmd/facefocus/cmd"

func main() {
	cmd.Execute()
}
