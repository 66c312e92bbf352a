package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidus-sk/Yaesu-Pi/cat"
	"github.com/davidus-sk/Yaesu-Pi/rigsim"
)

func TestMain(m *testing.M) {
	log.logger = zap.NewNop().Sugar()
	os.Exit(m.Run())
}

// recordingConn notes the opcode of every packet on its way to the rig.
type recordingConn struct {
	*rigsim.Conn
	ops []cat.Opcode
}

func (c *recordingConn) Write(p []byte) (int, error) {
	if len(p) == cat.PacketSize {
		c.ops = append(c.ops, cat.Packet{p[0], p[1], p[2], p[3], p[4]}.Opcode())
	}
	return c.Conn.Write(p)
}

func newTestSession(t *testing.T, rig *rigsim.Rig) (*cat.Session, *recordingConn) {
	t.Helper()
	conn := &recordingConn{Conn: rig.Dial()}
	s := cat.NewSession(cat.WithOpener(func(string, int) (cat.Transport, error) {
		return conn, nil
	}))
	require.NoError(t, s.Connect("/dev/ttyUSB0", 9600))
	t.Cleanup(func() { _ = s.Close() })
	return s, conn
}

func setCommandArgs(t *testing.T, lock, ptt, split, clar *bool, toggle bool, freq float64, mode string) {
	t.Helper()
	setLock, setPTT, setSplit, setClar = lock, ptt, split, clar
	toggleVFO, setFrequency, setMode = toggle, freq, mode
	t.Cleanup(func() {
		setLock, setPTT, setSplit, setClar = nil, nil, nil, nil
		toggleVFO, setFrequency, setMode = false, 0, ""
	})
}

func on() *bool  { b := true; return &b }
func off() *bool { b := false; return &b }

func TestApplyCommands(t *testing.T) {
	rig := rigsim.New()
	s, conn := newTestSession(t, rig)
	setCommandArgs(t, on(), on(), on(), off(), true, 28.07412, "cwr")

	require.NoError(t, applyCommands(s))
	assert.Equal(t, []cat.Opcode{
		cat.OpLockOn,
		cat.OpSetMode,
		cat.OpSetFrequency,
		cat.OpSplitOn,
		cat.OpClarOff,
		cat.OpToggleVFO,
		cat.OpPTTOn,
	}, conn.ops)

	assert.True(t, rig.Locked())
	assert.True(t, rig.Split())
	assert.True(t, rig.PTT())
	assert.True(t, rig.VFOB())

	// frequency and mode went to VFO A before the toggle
	require.NoError(t, s.ToggleVFO())
	assert.Equal(t, 28.07412, rig.Frequency())
	assert.Equal(t, cat.ModeCWR, rig.Mode())
}

func TestApplyCommandsNothingRequested(t *testing.T) {
	s, conn := newTestSession(t, rigsim.New())
	setCommandArgs(t, nil, nil, nil, nil, false, 0, "")

	require.NoError(t, applyCommands(s))
	assert.Empty(t, conn.ops)
}

func TestApplyCommandsStopsOnError(t *testing.T) {
	s, conn := newTestSession(t, rigsim.New())
	setCommandArgs(t, nil, on(), nil, nil, false, 0, "XYZ")

	assert.ErrorIs(t, applyCommands(s), cat.ErrUnknownMode)
	assert.Empty(t, conn.ops)
}

func TestPollStatus(t *testing.T) {
	rig := rigsim.New()
	rig.SetRx(cat.RxStatus{Signal: 7, Centered: true})
	s, conn := newTestSession(t, rig)

	transmitting, err := pollStatus(s)
	require.NoError(t, err)
	assert.False(t, transmitting)
	assert.Equal(t, []cat.Opcode{cat.OpGetFrequencyMode, cat.OpGetRxStatus, cat.OpGetTxStatus}, conn.ops)

	st := s.Status()
	assert.Equal(t, "14.25500", st[cat.FieldFrequency])
	assert.Equal(t, "7", st[cat.FieldRxSignal])
	assert.NotContains(t, st, cat.FieldTxPower)

	require.NoError(t, s.PTT(true))
	transmitting, err = pollStatus(s)
	require.NoError(t, err)
	assert.True(t, transmitting)
	assert.Equal(t, "true", s.Status()[cat.FieldPTTOn])

	rig.SetMute(true)
	_, err = pollStatus(s)
	assert.ErrorIs(t, err, cat.ErrNoReply)
}

func TestStatusLineFollowsPTT(t *testing.T) {
	rig := rigsim.New()
	s, _ := newTestSession(t, rig)
	sl := newTestStatusLog(t)

	require.NoError(t, s.PTT(true))
	transmitting := refreshStatusLine(s, sl, false)
	assert.True(t, transmitting)
	assert.Regexp(t, `^  TX   14\.25500 USB PO8  - uptime: `, sl.data.line)

	require.NoError(t, s.PTT(false))
	transmitting = refreshStatusLine(s, sl, transmitting)
	assert.False(t, transmitting)
	assert.Regexp(t, `^ S0  14\.25500 USB  - uptime: `, sl.data.line)

	// the snapshot still carries the last TX reply
	assert.Equal(t, "true", s.Status()[cat.FieldPTTOn])
}

func TestStatusLineKeepsStateOnFailedPoll(t *testing.T) {
	rig := rigsim.New()
	s, _ := newTestSession(t, rig)
	sl := newTestStatusLog(t)

	require.NoError(t, s.PTT(true))
	rig.SetMute(true)
	assert.True(t, refreshStatusLine(s, sl, true))
	assert.Regexp(t, `^ ----  \?  - uptime: `, sl.data.line)
}

func TestWatchStopsWithContext(t *testing.T) {
	s, conn := newTestSession(t, rigsim.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, watch(ctx, s, time.Hour))

	assert.Len(t, conn.ops, 3)
	assert.False(t, statusLog.isRealtime())
}
