package cat_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidus-sk/Yaesu-Pi/cat"
	"github.com/davidus-sk/Yaesu-Pi/rigsim"
)

// scriptedTransport queues the next canned reply on every write and records
// what was written. late bytes show up in the input right after the first
// read, like the tail of a reply that missed the timeout.
type scriptedTransport struct {
	writeLimit int // bytes accepted per write, 0 means all
	writeErr   error
	replies    [][]byte
	late       []byte
	input      []byte
	written    [][]byte
	flushes    int
	closed     int
}

func (t *scriptedTransport) Write(p []byte) (int, error) {
	t.written = append(t.written, append([]byte(nil), p...))
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	if len(t.replies) > 0 {
		t.input = append(t.input, t.replies[0]...)
		t.replies = t.replies[1:]
	}
	if t.writeLimit > 0 && t.writeLimit < len(p) {
		return t.writeLimit, nil
	}
	return len(p), nil
}

func (t *scriptedTransport) ReadTimeout(p []byte, _ time.Duration) (int, error) {
	n := copy(p, t.input)
	t.input = t.input[n:]
	t.input = append(t.input, t.late...)
	t.late = nil
	return n, nil
}

func (t *scriptedTransport) Flush() error {
	t.flushes++
	t.input = nil
	return nil
}

func (t *scriptedTransport) Close() error {
	t.closed++
	return nil
}

func (t *scriptedTransport) opener() cat.Opener {
	return func(string, int) (cat.Transport, error) { return t, nil }
}

func connect(t *testing.T, o cat.Opener) *cat.Session {
	t.Helper()
	s := cat.NewSession(cat.WithOpener(o), cat.WithReplyTimeout(10*time.Millisecond))
	require.NoError(t, s.Connect("/dev/ttyUSB0", 9600))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	tr := &scriptedTransport{}
	s := cat.NewSession(cat.WithOpener(tr.opener()))
	assert.Equal(t, cat.StateDisconnected, s.State())

	require.NoError(t, s.Connect("/dev/ttyUSB0", 9600))
	assert.Equal(t, cat.StateConnected, s.State())
	assert.Error(t, s.Connect("/dev/ttyUSB0", 9600))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, tr.closed)
	assert.Equal(t, cat.StateDisconnected, s.State())

	assert.ErrorIs(t, s.Lock(true), cat.ErrNotConnected)
	_, err := s.GetRxStatus()
	assert.ErrorIs(t, err, cat.ErrNotConnected)
}

func TestSessionConnectFailure(t *testing.T) {
	cause := errors.New("no such file or directory")
	s := cat.NewSession(cat.WithOpener(func(string, int) (cat.Transport, error) {
		return nil, cause
	}))
	err := s.Connect("/dev/ttyUSB9", 9600)
	assert.ErrorIs(t, err, cat.ErrDeviceUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cat.StateDisconnected, s.State())
}

func TestSessionCommands(t *testing.T) {
	rig := rigsim.New()
	s := connect(t, rig.Opener())

	require.NoError(t, s.Lock(true))
	assert.True(t, rig.Locked())
	require.NoError(t, s.Split(true))
	assert.True(t, rig.Split())
	require.NoError(t, s.Clarifier(true))
	assert.True(t, rig.Clarifier())
	require.NoError(t, s.PTT(true))
	assert.True(t, rig.PTT())
	require.NoError(t, s.PTT(false))
	assert.False(t, rig.PTT())

	require.NoError(t, s.ToggleVFO())
	assert.True(t, rig.VFOB())
	assert.Equal(t, 7.03, rig.Frequency())
	assert.Equal(t, cat.ModeCW, rig.Mode())

	assert.Equal(t, cat.StateIdle, s.State())
}

func TestSessionSetFrequencyAndMode(t *testing.T) {
	rig := rigsim.New()
	s := connect(t, rig.Opener())

	require.NoError(t, s.SetFrequency(145.5))
	require.NoError(t, s.SetMode("fm"))
	assert.Equal(t, 145.5, rig.Frequency())
	assert.Equal(t, cat.ModeFM, rig.Mode())

	r, err := s.GetFrequencyMode()
	require.NoError(t, err)
	assert.Equal(t, 145.5, r.Frequency)
	assert.Equal(t, "FM", r.Mode)

	st := s.Status()
	assert.Equal(t, "145.50000", st[cat.FieldFrequency])
	assert.Equal(t, "FM", st[cat.FieldMode])

	require.NoError(t, s.SetModeCode(cat.ModeFMN))
	r, err = s.GetFrequencyMode()
	require.NoError(t, err)
	assert.Equal(t, "FMN", r.Mode)
}

func TestSessionUnknownModeWritesNothing(t *testing.T) {
	tr := &scriptedTransport{}
	s := connect(t, tr.opener())

	err := s.SetMode("XYZ")
	assert.ErrorIs(t, err, cat.ErrUnknownMode)
	assert.Empty(t, tr.written)
	assert.Equal(t, cat.StateConnected, s.State())
}

func TestSessionStatusQueries(t *testing.T) {
	rig := rigsim.New()
	rig.SetRx(cat.RxStatus{Signal: 9, Centered: true, Squelched: true})
	rig.SetTx(6, true)
	s := connect(t, rig.Opener())

	rx, err := s.GetRxStatus()
	require.NoError(t, err)
	assert.Equal(t, cat.RxStatus{Signal: 9, Centered: true, Squelched: true}, rx)

	_, err = s.GetTxStatus()
	assert.ErrorIs(t, err, cat.ErrTxStatusUnavailable)
	assert.NotContains(t, s.Status(), cat.FieldPTTOn)
	assert.Equal(t, cat.StateIdle, s.State())

	require.NoError(t, s.PTT(true))
	tx, err := s.GetTxStatus()
	require.NoError(t, err)
	assert.Equal(t, cat.TxStatus{Power: 6, Split: false, SWRHigh: true, PTT: true}, tx)

	require.NoError(t, s.Split(true))
	tx, err = s.GetTxStatus()
	require.NoError(t, err)
	assert.True(t, tx.Split)

	st := s.Status()
	assert.Equal(t, "9", st[cat.FieldRxSignal])
	assert.Equal(t, "true", st[cat.FieldRxSquelched])
	assert.Equal(t, "6", st[cat.FieldTxPower])
	assert.Equal(t, "true", st[cat.FieldPTTOn])
	assert.Equal(t, "true", st[cat.FieldTxSplit])
}

func TestSessionNoReply(t *testing.T) {
	rig := rigsim.New()
	s := connect(t, rig.Opener())

	require.NoError(t, s.Probe())
	before := s.Status()

	rig.SetMute(true)
	require.NoError(t, s.SetFrequency(7.074))
	err := s.Probe()
	assert.ErrorIs(t, err, cat.ErrNoReply)
	assert.Equal(t, cat.StateUnresponsive, s.State())
	assert.Equal(t, before, s.Status())

	rig.SetMute(false)
	r, err := s.GetFrequencyMode()
	require.NoError(t, err)
	assert.Equal(t, 7.074, r.Frequency)
	assert.Equal(t, cat.StateIdle, s.State())
}

func TestSessionShortRead(t *testing.T) {
	tr := &scriptedTransport{replies: [][]byte{{0x01, 0x42}}}
	s := connect(t, tr.opener())

	_, err := s.GetFrequencyMode()
	assert.ErrorIs(t, err, cat.ErrShortRead)
	assert.Empty(t, s.Status())
	assert.Equal(t, cat.StateIdle, s.State())
}

func TestSessionLateReplyTailDiscarded(t *testing.T) {
	tr := &scriptedTransport{
		replies: [][]byte{{0x01, 0x42, 0x55}, {0x00, 0x70, 0x30, 0x00, 0x02}},
		late:    []byte{0x00, 0x01},
	}
	s := connect(t, tr.opener())

	_, err := s.GetFrequencyMode()
	assert.ErrorIs(t, err, cat.ErrShortRead)

	r, err := s.GetFrequencyMode()
	require.NoError(t, err)
	assert.Equal(t, cat.FrequencyMode{Frequency: 7.03, Mode: "CW", ModeCode: cat.ModeCW}, r)
	assert.Equal(t, cat.Status{cat.FieldFrequency: "7.03000", cat.FieldMode: "CW"}, s.Status())
	assert.Equal(t, 2, tr.flushes)
}

func TestSessionCommandsDoNotFlush(t *testing.T) {
	tr := &scriptedTransport{}
	s := connect(t, tr.opener())

	require.NoError(t, s.PTT(true))
	require.NoError(t, s.SetFrequency(7.03))
	assert.Zero(t, tr.flushes)
}

func TestSessionShortWrite(t *testing.T) {
	tr := &scriptedTransport{writeLimit: 3}
	s := connect(t, tr.opener())

	assert.ErrorIs(t, s.PTT(true), cat.ErrShortWrite)
	assert.Equal(t, cat.StateIdle, s.State())

	tr.writeLimit = 0
	tr.writeErr = errors.New("input/output error")
	_, err := s.GetRxStatus()
	assert.ErrorIs(t, err, cat.ErrShortWrite)

	// the session stays usable
	tr.writeErr = nil
	tr.replies = [][]byte{{0x01, 0x42, 0x55, 0x00, 0x01}}
	r, err := s.GetFrequencyMode()
	require.NoError(t, err)
	assert.Equal(t, 14.255, r.Frequency)
}

func TestSessionMalformedReply(t *testing.T) {
	tr := &scriptedTransport{replies: [][]byte{{0x01, 0xab, 0x55, 0x00, 0x01}}}
	s := connect(t, tr.opener())

	_, err := s.GetFrequencyMode()
	assert.ErrorIs(t, err, cat.ErrMalformedReply)
	assert.Empty(t, s.Status())
}

func TestSessionWritesOnePacketPerCommand(t *testing.T) {
	tr := &scriptedTransport{}
	s := connect(t, tr.opener())

	require.NoError(t, s.SetFrequency(14.255))
	require.NoError(t, s.SetMode("USB"))
	require.NoError(t, s.ToggleVFO())
	assert.Equal(t, [][]byte{
		{0x01, 0x42, 0x55, 0x00, 0x01},
		{0x01, 0x00, 0x00, 0x00, 0x07},
		{0x00, 0x00, 0x00, 0x00, 0x81},
	}, tr.written)
}
