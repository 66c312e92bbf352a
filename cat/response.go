package cat

import (
	"fmt"
	"strconv"
)

const (
	nibbleMask = 0x0f
	bit5       = 0x20
	bit6       = 0x40
	bit7       = 0x80
	txNoStatus = 0xff
)

// Status field names.
const (
	FieldFrequency   = "tcvr_frequency"
	FieldMode        = "tcvr_mode"
	FieldRxSignal    = "rx_signal"
	FieldRxCentered  = "rx_centered"
	FieldRxCTCSSDCS  = "rx_ctcss_dcs_active"
	FieldRxSquelched = "rx_squelched"
	FieldTxPower     = "tx_power"
	FieldTxSplit     = "tx_split"
	FieldTxSWRHigh   = "tx_swr_high"
	FieldPTTOn       = "ptt_on"
)

// FrequencyMode is the reply to a get-frequency-and-mode query.
type FrequencyMode struct {
	Frequency float64 // MHz
	Mode      string  // "" when the code is not in the mode table
	ModeCode  Mode
}

// Fields flattens the reply into status fields.
func (r FrequencyMode) Fields() map[string]string {
	return map[string]string{
		FieldFrequency: FormatFrequency(r.Frequency),
		FieldMode:      r.Mode,
	}
}

// RxStatus is the reply to a receiver status query.
type RxStatus struct {
	Signal         byte // S-meter, 0..15
	Centered       bool // discriminator centered
	CTCSSDCSActive bool // tone/code matched
	Squelched      bool
}

// Fields flattens the reply into status fields.
func (r RxStatus) Fields() map[string]string {
	f := make(map[string]string, 4)
	f[FieldRxSignal] = strconv.Itoa(int(r.Signal))
	f[FieldRxCentered] = strconv.FormatBool(r.Centered)
	f[FieldRxCTCSSDCS] = strconv.FormatBool(r.CTCSSDCSActive)
	f[FieldRxSquelched] = strconv.FormatBool(r.Squelched)
	return f
}

// TxStatus is the reply to a transmitter status query.
type TxStatus struct {
	Power   byte // PO meter, 0..15
	Split   bool
	SWRHigh bool
	PTT     bool
}

// Fields flattens the reply into status fields.
func (r TxStatus) Fields() map[string]string {
	f := make(map[string]string, 4)
	f[FieldTxPower] = strconv.Itoa(int(r.Power))
	f[FieldTxSplit] = strconv.FormatBool(r.Split)
	f[FieldTxSWRHigh] = strconv.FormatBool(r.SWRHigh)
	f[FieldPTTOn] = strconv.FormatBool(r.PTT)
	return f
}

func checkReplyLen(d []byte) error {
	if len(d) < PacketSize {
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, len(d), PacketSize)
	}
	return nil
}

// DecodeFrequencyMode parses a frequency/mode reply: frequency in bytes 0..3,
// mode code in byte 4.
func DecodeFrequencyMode(d []byte) (r FrequencyMode, err error) {
	if err = checkReplyLen(d); err != nil {
		return
	}
	if r.Frequency, err = DecodeFrequency(d[:4]); err != nil {
		return FrequencyMode{}, err
	}
	r.ModeCode = Mode(d[4])
	r.Mode = ModeName(r.ModeCode)
	return
}

// DecodeRxStatus parses the receiver status byte. The centered flag has
// inverted polarity: bit 5 set means not centered.
func DecodeRxStatus(d []byte) (r RxStatus, err error) {
	if err = checkReplyLen(d); err != nil {
		return
	}
	b := d[0]
	r.Signal = b & nibbleMask
	r.Centered = ^b&bit5 != 0
	r.CTCSSDCSActive = b&bit6 != 0
	r.Squelched = b&bit7 != 0
	return
}

// DecodeTxStatus parses the transmitter status byte. A status byte of 0xff
// means the radio is not transmitting and has nothing to report. The split
// flag has inverted polarity: bit 5 set means split off.
func DecodeTxStatus(d []byte) (r TxStatus, err error) {
	if err = checkReplyLen(d); err != nil {
		return
	}
	b := d[0]
	if b == txNoStatus {
		return r, ErrTxStatusUnavailable
	}
	r.Power = b & nibbleMask
	r.Split = ^b&bit5 != 0
	r.SWRHigh = b&bit6 != 0
	r.PTT = b&bit7 != 0
	return
}
