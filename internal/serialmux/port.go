package serialmux

import (
	"io"
)

// SerialPorter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real serial hardware.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}

// PortOptions defines serial port configuration parameters.
type PortOptions struct {
	BaudRate int
	DataBits int
}

// DefaultPortOptions returns the default mode for serial heart monitors.
func DefaultPortOptions() PortOptions {
	return PortOptions{
		BaudRate: 115200,
		DataBits: 8,
	}
}
