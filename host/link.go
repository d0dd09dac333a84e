package host

// Serial link to a controller board. The Port abstraction keeps the
// streaming code off the concrete transport, so tests run against an
// in-memory pipe and the CLI against a real device.

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"

	"stepcore/planner"
	"stepcore/wire"
)

// Port is the transport a Link writes frames to.
type Port interface {
	io.ReadWriteCloser
}

// LinkConfig holds serial port parameters.
type LinkConfig struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud rate. USB CDC devices ignore it.
	Baud int

	// ReadTimeout in milliseconds; 0 blocks.
	ReadTimeout int
}

// DefaultLinkConfig returns the stock configuration for a device path.
func DefaultLinkConfig(device string) *LinkConfig {
	return &LinkConfig{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100,
	}
}

// Open opens a native serial port for the configuration.
func Open(cfg *LinkConfig) (Port, error) {
	if cfg == nil {
		return nil, errors.New("link config cannot be nil")
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial port %s", cfg.Device)
	}
	return port, nil
}

// Link streams framed segments to a controller.
type Link struct {
	port Port
	seq  uint8

	// Sent counts frames written since the link opened.
	Sent uint64
}

// NewLink wraps an open port.
func NewLink(port Port) *Link {
	return &Link{port: port}
}

// Send frames one segment and writes it to the port.
func (l *Link) Send(s planner.Segment) error {
	frame := wire.EncodeSegment(l.seq, s)
	l.seq = (l.seq + 1) & wire.SeqMask
	if _, err := l.port.Write(frame); err != nil {
		return errors.Wrap(err, "write segment frame")
	}
	l.Sent++
	return nil
}

// SendAll streams a program of segments in order, stopping on the first
// write failure.
func (l *Link) SendAll(segments []planner.Segment) error {
	for i, s := range segments {
		if err := l.Send(s); err != nil {
			return errors.Wrapf(err, "segment %d", i)
		}
	}
	return nil
}

// Close releases the port.
func (l *Link) Close() error {
	return l.port.Close()
}
