package main

import "github.com/schovi/htmlesc/cmd"

func main() {
	cmd.Execute()
}
