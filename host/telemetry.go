package host

// WebSocket telemetry surface. Dashboards subscribe and receive periodic
// status snapshots while a program runs; the core itself stays unaware of
// the transport.

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"stepcore/core"
)

// Status is one telemetry snapshot.
type Status struct {
	Busy       bool                `json:"busy"`
	StepCounts [core.Motors]uint32 `json:"step_counts"`
	RunMagic   uint16              `json:"run_magic"`
	StageMagic uint16              `json:"stage_magic"`
	Time       time.Time           `json:"time"`
}

// Snapshot reads the current controller status.
func Snapshot() Status {
	s := Status{
		Busy:       core.IsBusy(),
		RunMagic:   core.RunMagic(),
		StageMagic: core.StageMagic(),
		Time:       time.Now(),
	}
	for i := 0; i < core.Motors; i++ {
		s.StepCounts[i] = core.StepCount(i)
	}
	return s
}

// Telemetry broadcasts status snapshots to websocket subscribers.
type Telemetry struct {
	Interval time.Duration

	upgrader websocket.Upgrader
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	done     chan struct{}
	once     sync.Once
}

// NewTelemetry returns a broadcaster with the given snapshot interval.
func NewTelemetry(interval time.Duration) *Telemetry {
	return &Telemetry{
		Interval: interval,
		conns:    make(map[*websocket.Conn]struct{}),
		done:     make(chan struct{}),
	}
}

// Handler upgrades an HTTP request to a telemetry subscription.
func (t *Telemetry) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	t.mu.Lock()
	t.conns[conn] = struct{}{}
	t.mu.Unlock()
}

// Run broadcasts snapshots until Stop. It blocks; start it on its own
// goroutine.
func (t *Telemetry) Run() {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.broadcast(Snapshot())
		}
	}
}

// Stop ends the broadcast loop and closes all subscriptions.
func (t *Telemetry) Stop() {
	t.once.Do(func() { close(t.done) })
	t.mu.Lock()
	defer t.mu.Unlock()
	for conn := range t.conns {
		conn.Close()
		delete(t.conns, conn)
	}
}

func (t *Telemetry) broadcast(s Status) {
	payload, err := json.Marshal(s)
	if err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for conn := range t.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(t.conns, conn)
		}
	}
}

// Serve runs an HTTP server exposing the telemetry endpoint at /status
// until the listener fails.
func Serve(addr string, t *Telemetry) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", t.Handler)
	go t.Run()
	defer t.Stop()
	return errors.Wrap(http.ListenAndServe(addr, mux), "telemetry server")
}
