package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/wificar/wificar.go/pkg/bridge"
	"github.com/wificar/wificar.go/pkg/drive"
	"github.com/wificar/wificar.go/pkg/framework"
	"github.com/wificar/wificar.go/pkg/pigpiod"
	"github.com/wificar/wificar.go/pkg/telemetry"
)

func init() {
	pigpiod.SetupFlags()
	drive.SetupFlags()
	bridge.SetupFlags()
	telemetry.SetupFlags()
}

func main() {
	flag.Parse()

	pi, err := pigpiod.NewConfig().Dial()
	if err != nil {
		log.Fatalln(err)
	}
	defer pi.Close()

	train := drive.NewConfig().NewTrain(pi)
	brd := bridge.NewConfig().NewBridge(train)

	reporter, err := telemetry.NewConfig().NewReporter()
	if err != nil {
		log.Fatalln(err)
	}

	runner := framework.NewRunner().HandleSignals()
	if reporter != nil {
		brd.Sink = reporter
		runner.Go(framework.NamedRun("telemetry", reporter))
	}
	runner.Go(framework.NamedRun("bridge", brd))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
