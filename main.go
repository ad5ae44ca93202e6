package main

import "roombook/cmd"

func main() {
	cmd.Execute()
}
