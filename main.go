package main

import "github.com/sierrasilva/backoffice/cmd"

func main() {
	cmd.Execute()
}
