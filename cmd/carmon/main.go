package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/wificar/wificar.go/pkg/telemetry"
)

var (
	mqttURL = "mqtt://localhost:1883/wificar/"
)

func init() {
	if val := os.Getenv("WIFICAR_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := telemetry.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", telemetry.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") && len(payload) == 0 {
			log.Printf("%s: (offline)", topic)
			return
		}
		log.Printf("%s: %s", topic, string(payload))
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
