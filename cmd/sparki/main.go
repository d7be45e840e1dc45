package main

import "github.com/vietddude/sparki/internal/cli"

func main() {
	cli.Execute()
}
