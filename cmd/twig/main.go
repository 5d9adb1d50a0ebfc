package main

import "github.com/aweris/twig/cmd/twig/cmd"

func main() {
	cmd.Execute()
}
