package main

import "github.com/bookline/bookline_backend/cmd"

func main() {
	cmd.Execute()
}
