package main

import "github.com/Vishruth-S/Project-Beaver/cmd"

func main() {
	cmd.Execute()
}
