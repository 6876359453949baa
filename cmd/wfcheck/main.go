package main

import "github.com/seisnode/wfcheck/cmd/wfcheck/cmd"

func main() {
	cmd.Execute()
}
