package cat

import "strings"

// Opcode is the command byte carried in the last position of every packet.
type Opcode byte

// Commands reference: FT-817ND operating manual, "CAT commands" (5-byte protocol).
const (
	OpLockOn           Opcode = 0x00
	OpSetFrequency     Opcode = 0x01
	OpSplitOn          Opcode = 0x02
	OpGetFrequencyMode Opcode = 0x03
	OpClarOn           Opcode = 0x05
	OpSetMode          Opcode = 0x07
	OpPTTOn            Opcode = 0x08
	OpLockOff          Opcode = 0x80
	OpToggleVFO        Opcode = 0x81
	OpSplitOff         Opcode = 0x82
	OpClarOff          Opcode = 0x85
	OpPTTOff           Opcode = 0x88
	OpGetRxStatus      Opcode = 0xe7
	OpGetTxStatus      Opcode = 0xf7
)

var opcodeNames = map[Opcode]string{
	OpLockOn:           "lockOn",
	OpSetFrequency:     "setFrequency",
	OpSplitOn:          "splitOn",
	OpGetFrequencyMode: "getFrequencyMode",
	OpClarOn:           "clarOn",
	OpSetMode:          "setMode",
	OpPTTOn:            "pttOn",
	OpLockOff:          "lockOff",
	OpToggleVFO:        "toggleVFO",
	OpSplitOff:         "splitOff",
	OpClarOff:          "clarOff",
	OpPTTOff:           "pttOff",
	OpGetRxStatus:      "getRxStatus",
	OpGetTxStatus:      "getTxStatus",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Mode is an operating mode wire code.
type Mode byte

const (
	ModeLSB Mode = 0x00
	ModeUSB Mode = 0x01
	ModeCW  Mode = 0x02
	ModeCWR Mode = 0x03
	ModeAM  Mode = 0x04
	ModeWFM Mode = 0x06
	ModeFM  Mode = 0x08
	ModeDIG Mode = 0x0a
	ModePKT Mode = 0x0c
	ModeFMN Mode = 0x88
)

type operatingMode struct {
	name string
	code Mode
}

var operatingModes = []operatingMode{
	{name: "LSB", code: ModeLSB},
	{name: "USB", code: ModeUSB},
	{name: "CW", code: ModeCW},
	{name: "CWR", code: ModeCWR},
	{name: "AM", code: ModeAM},
	{name: "WFM", code: ModeWFM},
	{name: "FM", code: ModeFM},
	{name: "DIG", code: ModeDIG},
	{name: "PKT", code: ModePKT},
	{name: "FMN", code: ModeFMN},
}

// LookupMode returns the wire code for a mode name. Names are matched
// case-insensitively.
func LookupMode(name string) (Mode, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i := range operatingModes {
		if operatingModes[i].name == name {
			return operatingModes[i].code, nil
		}
	}
	return 0, &ModeError{Name: name}
}

// ModeName returns the canonical name of a wire code, or "" if the code
// is not in the table.
func ModeName(code Mode) string {
	for i := range operatingModes {
		if operatingModes[i].code == code {
			return operatingModes[i].name
		}
	}
	return ""
}

// ModeNames lists the known mode names in table order.
func ModeNames() []string {
	names := make([]string, 0, len(operatingModes))
	for _, m := range operatingModes {
		names = append(names, m.name)
	}
	return names
}

func (m Mode) String() string {
	if name := ModeName(m); name != "" {
		return name
	}
	return "unknown"
}
