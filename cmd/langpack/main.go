package main

import "github.com/Skidy89/simple-language-loader/internal/cli"

func main() {
	cli.Execute()
}
