package main

import "github.com/merge-champ/merge-champ/cmd"

func main() {
	cmd.Execute()
}
