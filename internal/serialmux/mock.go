package serialmux

import (
	"io"
	"time"
)

// MockSerialPort implements SerialPorter for testing and dev mode.
type MockSerialPort struct {
	io.Reader
	writes [][]byte
	closed bool
}

func (m *MockSerialPort) Write(p []byte) (n int, err error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	m.writes = append(m.writes, buf)
	return len(p), nil
}

func (m *MockSerialPort) Close() error {
	m.closed = true
	return nil
}

// Writes returns everything written to the mock port, one call per entry.
func (m *MockSerialPort) Writes() [][]byte {
	return m.writes
}

// NewMockSerialMux creates a SerialMux backed by a mock port that replays
// the given line periodically, simulating a streaming heart monitor in dev
// mode.
func NewMockSerialMux(mockLine []byte) *SerialMux[*MockSerialPort] {
	r, w := io.Pipe()
	mockPort := &MockSerialPort{Reader: r}

	// generate data periodically to simulate serial port input
	go func() {
		defer w.Close()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if mockPort.closed {
				return
			}
			if _, err := w.Write(append(mockLine, '\n')); err != nil {
				return
			}
		}
	}()

	return NewSerialMux[*MockSerialPort](mockPort)
}
