// Package telemetry publishes vehicle presence and control loop events
// over MQTT.
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/wificar/wificar.go/pkg/bridge"
)

// metaDoc is the retained presence record under <name>/meta. It is
// cleared (retained nil) on clean shutdown and by the broker via the
// last-will when the connection dies.
type metaDoc struct {
	Name      string `json:"name"`
	MachineID string `json:"machine-id,omitempty"`
}

// statusDoc is one loop event under <name>/status.
type statusDoc struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}

// Reporter publishes loop events for one vehicle.
type Reporter struct {
	Queue *Queue
	Name  string

	metaJSON string
}

// NewReporter creates a Reporter publishing under <prefix><name>/.
func NewReporter(brokerURL, name string) (*Reporter, error) {
	meta, err := json.Marshal(&metaDoc{Name: name, MachineID: hostID()})
	if err != nil {
		panic(err)
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+name+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("wificar:" + name)
	}
	r := &Reporter{
		Queue:    NewQueue(opts, topicPrefix),
		Name:     name,
		metaJSON: string(meta),
	}
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	return r, nil
}

// Report implements the control loop's event sink. Publishing is fire
// and forget so the loop never blocks on the broker.
func (r *Reporter) Report(ev bridge.Event, at time.Time) {
	doc, err := json.Marshal(&statusDoc{Event: string(ev), At: at})
	if err != nil {
		panic(err)
	}
	r.Queue.Pub(r.Name+"/status", doc)
}

// Run implements Runnable: connect, hold until cancelled, then clear
// the retained presence record and disconnect.
func (r *Reporter) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(r.Name+"/meta", nil, 1, true)
	r.Queue.Close()
	return nil
}

func (r *Reporter) onConnected() {
	r.Queue.PubWith(r.Name+"/meta", []byte(r.metaJSON), 1, true)
}

// hostID is the machine-derived identity, empty when unavailable.
func hostID() string {
	id, err := machineid.ID()
	if err != nil {
		return ""
	}
	return id
}
