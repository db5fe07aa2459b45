package main

import "github.com/theirongolddev/kburn/cmd"

func main() {
	cmd.Execute()
}
