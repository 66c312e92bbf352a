package rigsim

import (
	"errors"
	"sync"
	"time"

	"github.com/davidus-sk/Yaesu-Pi/cat"
)

var errClosed = errors.New("rigsim: connection closed")

// Conn is an in-process cat.Transport wired straight to a Rig. Replies are
// produced synchronously on Write, so ReadTimeout never has to wait: an empty
// reply queue reads as a timeout.
type Conn struct {
	rig *Rig

	mutex   sync.Mutex
	in      []byte
	pending []byte
	closed  bool
}

// Dial returns a new connection to the rig.
func (r *Rig) Dial() *Conn {
	return &Conn{rig: r}
}

// Opener returns a cat.Opener that ignores the device and speed and dials r.
func (r *Rig) Opener() cat.Opener {
	return func(string, int) (cat.Transport, error) {
		return r.Dial(), nil
	}
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return 0, errClosed
	}
	c.in = append(c.in, p...)
	for len(c.in) >= cat.PacketSize {
		var pkt cat.Packet
		copy(pkt[:], c.in)
		c.in = c.in[cat.PacketSize:]
		c.pending = append(c.pending, c.rig.Handle(pkt)...)
	}
	return len(p), nil
}

func (c *Conn) ReadTimeout(p []byte, _ time.Duration) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return 0, errClosed
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Flush drops replies that were never read.
func (c *Conn) Flush() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return errClosed
	}
	c.pending = nil
	return nil
}

func (c *Conn) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return errClosed
	}
	c.closed = true
	return nil
}
