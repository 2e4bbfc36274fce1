package main

import (
	"github.com/robotalks/simpleserial.go/pkg/cli/sh"
	"github.com/robotalks/simpleserial.go/pkg/config"

	_ "github.com/robotalks/simpleserial.go/pkg/cli/cmds/capture"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
