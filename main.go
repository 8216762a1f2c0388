package main

import "github.com/inovacc/fleetroster/cmd"

func main() {
	cmd.Execute()
}
