package rigsim

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/goterm/term"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/davidus-sk/Yaesu-Pi/cat"
)

// PTYServer exposes a Rig on a pseudo-terminal, so a client can open the
// slave side as if it were the radio's serial port.
type PTYServer struct {
	rig *Rig
	pty *term.PTY
	log *zap.SugaredLogger
}

// NewPTYServer opens a pseudo-terminal for rig.
func NewPTYServer(rig *Rig, log *zap.SugaredLogger) (*PTYServer, error) {
	pty, err := term.OpenPTY()
	if err != nil {
		return nil, fmt.Errorf("opening pty: %w", err)
	}

	// The protocol is binary, keep the line discipline out of the way.
	t, err := term.Attr(pty.Slave)
	if err != nil {
		_ = pty.Close()
		return nil, fmt.Errorf("reading pty attributes: %w", err)
	}
	t.Raw()
	if err := t.Set(pty.Slave); err != nil {
		_ = pty.Close()
		return nil, fmt.Errorf("setting pty raw: %w", err)
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PTYServer{rig: rig, pty: pty, log: log}, nil
}

// Path returns the device path of the slave side.
func (s *PTYServer) Path() (string, error) {
	return s.pty.PTSName()
}

// Serve answers packets written to the slave side until ctx is done.
func (s *PTYServer) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.pty.Master.Close()
	}()

	buf := make([]byte, 64)
	var in []byte
	for {
		n, err := s.pty.Master.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading pty: %w", err)
		}
		in = append(in, buf[:n]...)

		for len(in) >= cat.PacketSize {
			var p cat.Packet
			copy(p[:], in)
			in = in[cat.PacketSize:]

			reply := s.rig.Handle(p)
			s.log.Debugf("rigsim: %v -> [% x]", p, reply)
			if len(reply) == 0 {
				continue
			}
			if _, err := s.pty.Master.Write(reply); err != nil {
				return fmt.Errorf("writing pty: %w", err)
			}
		}
	}
}

// Close releases both sides of the pseudo-terminal. The master may already
// have been closed by Serve.
func (s *PTYServer) Close() error {
	return multierr.Combine(
		ignoreClosed(s.pty.Slave.Close()),
		ignoreClosed(s.pty.Master.Close()),
	)
}

func ignoreClosed(err error) error {
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
