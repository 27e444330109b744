package main

import "github.com/papapumpkin/pybump/cmd"

func main() {
	cmd.Execute()
}
