package main

import (
	"github.com/quorumkit/threshold-dkg/cli"
)

var (
	// AppName is the application name
	AppName = "threshold-dkg"

	// Version is the app version
	Version = "v1.0.0"
)

func main() {
	cli.Execute(AppName, Version)
}
