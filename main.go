package main

import "github.com/canonical/capi-log-collector/cmd"

func main() {
	cmd.Execute()
}
