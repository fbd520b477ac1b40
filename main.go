package main

import "github.com/reloquent/entitycheck/cmd"

func main() {
	cmd.Execute()
}
