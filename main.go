package main

import "github.com/theirongolddev/clstat/cmd"

func main() {
	cmd.Execute()
}
