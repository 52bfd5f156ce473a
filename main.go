package main

import "github.com/Mohsinsiddi/calldecode/cmd"

func main() {
	cmd.Execute()
}
