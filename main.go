package main

import "github.com/Tiliavir/daylog/cmd"

func main() {
	cmd.Execute()
}
