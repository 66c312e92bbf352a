package cat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultReplyTimeout bounds the wait for a query reply.
const DefaultReplyTimeout = 3 * time.Second

// State is the session's position in the request/reply cycle.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateSending
	StateAwaitingReply
	StateIdle
	StateUnresponsive
)

var stateNames = [...]string{
	StateDisconnected:  "disconnected",
	StateConnected:     "connected",
	StateSending:       "sending",
	StateAwaitingReply: "awaiting reply",
	StateIdle:          "idle",
	StateUnresponsive:  "unresponsive",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var errAlreadyConnected = errors.New("session already connected")

// Option configures a Session.
type Option func(*Session)

// WithOpener replaces the transport opener, OpenSerial by default.
func WithOpener(o Opener) Option {
	return func(s *Session) { s.open = o }
}

// WithReplyTimeout sets how long a query waits for its reply.
func WithReplyTimeout(d time.Duration) Option {
	return func(s *Session) { s.replyTimeout = d }
}

// WithLogger sets the logger. Commands are logged at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithPacketDebug logs every packet written and read.
func WithPacketDebug(enabled bool) Option {
	return func(s *Session) { s.debugPackets = enabled }
}

// Session owns the transport to one transceiver and runs one exchange at a
// time: write a 5-byte command and, for queries, wait for the 5-byte reply.
//
// Decoded replies accumulate in the session's Status. Fields are only
// replaced by a newer reply to the same query, never cleared.
type Session struct {
	open         Opener
	replyTimeout time.Duration
	log          *zap.SugaredLogger
	debugPackets bool

	mutex  sync.Mutex
	tr     Transport
	state  State
	status Status
}

// NewSession returns a disconnected session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		open:         OpenSerial,
		replyTimeout: DefaultReplyTimeout,
		log:          zap.NewNop().Sugar(),
		status:       Status{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens the transport to device at the given speed.
func (s *Session) Connect(device string, speed int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tr != nil {
		return errAlreadyConnected
	}
	tr, err := s.open(device, speed)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	s.tr = tr
	s.state = StateConnected
	s.log.Debugf("port %s opened at %d baud", device, speed)
	return nil
}

// Close releases the transport. Closing a closed session does nothing.
func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.tr == nil {
		return nil
	}
	s.log.Debug("closing port")
	err := s.tr.Close()
	s.tr = nil
	s.state = StateDisconnected
	return err
}

// State returns the current session state.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Status returns a copy of the accumulated status fields.
func (s *Session) Status() Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.status.clone()
}

// Lock enables or disables the front panel lock.
func (s *Session) Lock(enabled bool) error {
	return s.command(EncodeLock(enabled), enabled)
}

// PTT keys or unkeys the transmitter.
func (s *Session) PTT(enabled bool) error {
	return s.command(EncodePTT(enabled), enabled)
}

// Split turns split operation on or off.
func (s *Session) Split(enabled bool) error {
	return s.command(EncodeSplit(enabled), enabled)
}

// Clarifier turns the clarifier on or off.
func (s *Session) Clarifier(enabled bool) error {
	return s.command(EncodeClarifier(enabled), enabled)
}

// ToggleVFO swaps between VFO A and B.
func (s *Session) ToggleVFO() error {
	return s.command(EncodeToggleVFO(), nil)
}

// SetFrequency tunes the active VFO to mhz. The range is the caller's to
// check.
func (s *Session) SetFrequency(mhz float64) error {
	return s.command(EncodeSetFrequency(mhz), mhz)
}

// SetMode selects an operating mode by name. Unknown names fail with
// ErrUnknownMode before anything is written.
func (s *Session) SetMode(name string) error {
	mode, err := LookupMode(name)
	if err != nil {
		return err
	}
	return s.SetModeCode(mode)
}

// SetModeCode selects an operating mode by wire code.
func (s *Session) SetModeCode(mode Mode) error {
	return s.command(EncodeSetMode(mode), mode)
}

// Probe checks that the transceiver answers by reading frequency and mode.
func (s *Session) Probe() error {
	_, err := s.GetFrequencyMode()
	return err
}

// GetFrequencyMode reads the dial frequency and operating mode.
func (s *Session) GetFrequencyMode() (FrequencyMode, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, err := s.query(EncodeQuery(OpGetFrequencyMode))
	if err != nil {
		return FrequencyMode{}, err
	}
	r, err := DecodeFrequencyMode(d)
	if err != nil {
		return FrequencyMode{}, fmt.Errorf("%v: %w", OpGetFrequencyMode, err)
	}
	s.status.merge(r.Fields())
	s.log.Debugf("status> frequency %s mode %q", FormatFrequency(r.Frequency), r.Mode)
	return r, nil
}

// GetRxStatus reads the receiver status.
func (s *Session) GetRxStatus() (RxStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, err := s.query(EncodeQuery(OpGetRxStatus))
	if err != nil {
		return RxStatus{}, err
	}
	r, err := DecodeRxStatus(d)
	if err != nil {
		return RxStatus{}, fmt.Errorf("%v: %w", OpGetRxStatus, err)
	}
	s.status.merge(r.Fields())
	s.log.Debugf("status> rx %+v", r)
	return r, nil
}

// GetTxStatus reads the transmitter status. It fails with
// ErrTxStatusUnavailable when the radio has no TX status to report.
func (s *Session) GetTxStatus() (TxStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, err := s.query(EncodeQuery(OpGetTxStatus))
	if err != nil {
		return TxStatus{}, err
	}
	r, err := DecodeTxStatus(d)
	if err != nil {
		return TxStatus{}, fmt.Errorf("%v: %w", OpGetTxStatus, err)
	}
	s.status.merge(r.Fields())
	s.log.Debugf("status> tx %+v", r)
	return r, nil
}

func (s *Session) command(p Packet, arg interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.send(p); err != nil {
		return err
	}
	s.state = StateIdle
	s.log.Debugf("command> %v: %v", p.Opcode(), arg)
	return nil
}

// send writes one packet. Callers hold the mutex.
func (s *Session) send(p Packet) error {
	if s.tr == nil {
		return fmt.Errorf("%v: %w", p.Opcode(), ErrNotConnected)
	}
	s.state = StateSending
	if s.debugPackets {
		s.log.Debugf("sending %v", p)
	}

	n, err := s.tr.Write(p[:])
	if err != nil {
		s.state = StateIdle
		return fmt.Errorf("%w: %v: wrote %d of %d bytes: %w", ErrShortWrite, p.Opcode(), n, PacketSize, err)
	}
	if n != PacketSize {
		s.state = StateIdle
		return fmt.Errorf("%w: %v: wrote %d of %d bytes", ErrShortWrite, p.Opcode(), n, PacketSize)
	}
	return nil
}

// query sends p and waits for the reply. Leftovers of an earlier short or
// late reply are discarded first so they can't pass for this one. Callers
// hold the mutex.
func (s *Session) query(p Packet) ([]byte, error) {
	if s.tr == nil {
		return nil, fmt.Errorf("%v: %w", p.Opcode(), ErrNotConnected)
	}
	if err := s.tr.Flush(); err != nil {
		return nil, fmt.Errorf("%v: %w", p.Opcode(), err)
	}
	if err := s.send(p); err != nil {
		return nil, err
	}
	s.state = StateAwaitingReply

	d := make([]byte, PacketSize)
	n, err := s.tr.ReadTimeout(d, s.replyTimeout)
	if err != nil {
		s.state = StateUnresponsive
		return nil, fmt.Errorf("%w: %v: %w", ErrNoReply, p.Opcode(), err)
	}
	if n == 0 {
		s.state = StateUnresponsive
		return nil, fmt.Errorf("%w: %v: nothing received within %v", ErrNoReply, p.Opcode(), s.replyTimeout)
	}
	if s.debugPackets {
		s.log.Debugf("received '%v' [% x]", p.Opcode(), d[:n])
	}
	s.state = StateIdle
	if n < PacketSize {
		return nil, fmt.Errorf("%w: %v: got %d of %d bytes", ErrShortRead, p.Opcode(), n, PacketSize)
	}
	return d, nil
}
