package main

import (
	"github.com/wificar/wificar.go/pkg/cli/sh"

	_ "github.com/wificar/wificar.go/pkg/cli/cmds/car"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
