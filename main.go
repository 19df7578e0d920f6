package main

import "github.com/yashh-d/chainpulse/cmd"

func main() {
	cmd.Execute()
}
