package main

import "github.com/vibast-solutions/ms-go-mood-journal/cmd"

func main() {
	cmd.Execute()
}
