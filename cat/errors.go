package cat

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceUnavailable   = errors.New("device unavailable")
	ErrNotConnected        = errors.New("not connected")
	ErrShortWrite          = errors.New("short write")
	ErrNoReply             = errors.New("no reply from transceiver")
	ErrShortRead           = errors.New("short read")
	ErrUnknownMode         = errors.New("unknown operating mode")
	ErrTxStatusUnavailable = errors.New("tx status not available")
	ErrMalformedReply      = errors.New("malformed reply")
)

// ModeError is returned for a mode name missing from the mode table.
type ModeError struct {
	Name string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownMode, e.Name)
}

func (e *ModeError) Unwrap() error { return ErrUnknownMode }
