package main

import "github.com/diogo/cookieschat/internal/commands"

func main() {
	commands.Execute()
}
