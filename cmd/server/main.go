package main

import "github.com/gallerytab/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
