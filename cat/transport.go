package cat

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Transport is the byte channel to the transceiver.
type Transport interface {
	Write(p []byte) (int, error)
	// ReadTimeout reads up to len(p) bytes, waiting at most timeout.
	// It returns 0 and no error when nothing arrived in time.
	ReadTimeout(p []byte, timeout time.Duration) (int, error)
	// Flush discards input received but not yet read.
	Flush() error
	Close() error
}

// Opener opens a transport for a device path and line speed.
type Opener func(path string, speed int) (Transport, error)

type serialTransport struct {
	port serial.Port
}

// OpenSerial opens a serial port with the framing the radio expects:
// 8 data bits, no parity, 2 stop bits. Pending input is discarded.
func OpenSerial(path string, speed int) (Transport, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: speed,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", path, err)
	}
	t := &serialTransport{port: port}
	if err := t.Flush(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t *serialTransport) Flush() error {
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("flushing serial input: %w", err)
	}
	return nil
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

// The radio may deliver a reply in several chunks, so keep reading until the
// buffer is full or the deadline passes.
func (t *serialTransport) ReadTimeout(p []byte, timeout time.Duration) (n int, err error) {
	deadline := time.Now().Add(timeout)
	for n < len(p) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err = t.port.SetReadTimeout(remaining); err != nil {
			return n, fmt.Errorf("setting read timeout: %w", err)
		}
		var got int
		got, err = t.port.Read(p[n:])
		n += got
		if err != nil {
			return n, fmt.Errorf("reading from serial port: %w", err)
		}
		if got == 0 {
			break
		}
	}
	return n, nil
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
