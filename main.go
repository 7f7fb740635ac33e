package main

import "github.com/StinkyLord/notice-builder/cmd"

func main() {
	cmd.Execute()
}
