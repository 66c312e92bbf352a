// Package rigsim simulates a transceiver speaking the 5-byte CAT protocol.
// It answers queries from its own state the way the radio does and is used
// to exercise the cat package without hardware.
package rigsim

import (
	"sync"

	"github.com/davidus-sk/Yaesu-Pi/cat"
)

type vfo struct {
	freq [4]byte
	mode cat.Mode
}

// Rig is the simulated radio. It is safe for concurrent use.
type Rig struct {
	mutex sync.Mutex

	vfos   [2]vfo
	vfoIdx int

	locked bool
	ptt    bool
	split  bool
	clar   bool

	rx      cat.RxStatus
	txPower byte
	swrHigh bool

	mute bool
}

// New returns a rig tuned to 14.25500 MHz USB on VFO A, with 7.03000 MHz CW
// on VFO B.
func New() *Rig {
	r := &Rig{}
	r.vfos[0] = vfo{freq: cat.EncodeFrequency(14.255), mode: cat.ModeUSB}
	r.vfos[1] = vfo{freq: cat.EncodeFrequency(7.03), mode: cat.ModeCW}
	r.rx = cat.RxStatus{Centered: true}
	r.txPower = 8
	return r
}

// Handle applies one packet and returns the reply, or nil for commands that
// have none.
func (r *Rig) Handle(p cat.Packet) []byte {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v := &r.vfos[r.vfoIdx]
	switch p.Opcode() {
	case cat.OpLockOn:
		r.locked = true
	case cat.OpLockOff:
		r.locked = false
	case cat.OpPTTOn:
		r.ptt = true
	case cat.OpPTTOff:
		r.ptt = false
	case cat.OpSplitOn:
		r.split = true
	case cat.OpSplitOff:
		r.split = false
	case cat.OpClarOn:
		r.clar = true
	case cat.OpClarOff:
		r.clar = false
	case cat.OpToggleVFO:
		r.vfoIdx ^= 1
	case cat.OpSetFrequency:
		copy(v.freq[:], p[:4])
	case cat.OpSetMode:
		v.mode = cat.Mode(p[0])
	case cat.OpGetFrequencyMode:
		if r.mute {
			return nil
		}
		return []byte{v.freq[0], v.freq[1], v.freq[2], v.freq[3], byte(v.mode)}
	case cat.OpGetRxStatus:
		if r.mute {
			return nil
		}
		return []byte{r.rxStatusByte(), 0, 0, 0, 0}
	case cat.OpGetTxStatus:
		if r.mute {
			return nil
		}
		return []byte{r.txStatusByte(), 0, 0, 0, 0}
	}
	return nil
}

func (r *Rig) rxStatusByte() byte {
	b := r.rx.Signal & 0x0f
	if !r.rx.Centered {
		b |= 0x20
	}
	if r.rx.CTCSSDCSActive {
		b |= 0x40
	}
	if r.rx.Squelched {
		b |= 0x80
	}
	return b
}

// The radio reports nothing (0xff) while receiving.
func (r *Rig) txStatusByte() byte {
	if !r.ptt {
		return 0xff
	}
	b := r.txPower&0x0f | 0x80
	if !r.split {
		b |= 0x20
	}
	if r.swrHigh {
		b |= 0x40
	}
	return b
}

// SetMute makes the rig stop answering queries, as a radio that is switched
// off or on the wrong baud rate.
func (r *Rig) SetMute(mute bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.mute = mute
}

// SetRx sets the receiver status reported to queries.
func (r *Rig) SetRx(rx cat.RxStatus) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.rx = rx
}

// SetTx sets the power meter and high SWR flag reported while transmitting.
func (r *Rig) SetTx(power byte, swrHigh bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.txPower = power
	r.swrHigh = swrHigh
}

// Frequency returns the active VFO frequency in MHz.
func (r *Rig) Frequency() float64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	f, _ := cat.DecodeFrequency(r.vfos[r.vfoIdx].freq[:])
	return f
}

// Mode returns the active VFO mode code.
func (r *Rig) Mode() cat.Mode {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.vfos[r.vfoIdx].mode
}

// VFOB reports whether VFO B is active.
func (r *Rig) VFOB() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.vfoIdx == 1
}

func (r *Rig) Locked() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.locked
}

func (r *Rig) PTT() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.ptt
}

func (r *Rig) Split() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.split
}

func (r *Rig) Clarifier() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.clar
}
