package cat

import "fmt"

// PacketSize is the length of every command and reply.
const PacketSize = 5

// Packet is one 5-byte CAT frame. Byte 4 is the opcode.
type Packet [PacketSize]byte

// Opcode returns the command byte of the packet.
func (p Packet) Opcode() Opcode {
	return Opcode(p[PacketSize-1])
}

func (p Packet) String() string {
	return fmt.Sprintf("'%v' [% x]", p.Opcode(), p[:])
}

func newPacket(op Opcode) (p Packet) {
	p[PacketSize-1] = byte(op)
	return
}

// EncodeLock builds a lock or unlock command.
func EncodeLock(enabled bool) Packet {
	if enabled {
		return newPacket(OpLockOn)
	}
	return newPacket(OpLockOff)
}

// EncodePTT builds a transmit on/off command.
func EncodePTT(enabled bool) Packet {
	if enabled {
		return newPacket(OpPTTOn)
	}
	return newPacket(OpPTTOff)
}

// EncodeSplit builds a split on/off command.
func EncodeSplit(enabled bool) Packet {
	if enabled {
		return newPacket(OpSplitOn)
	}
	return newPacket(OpSplitOff)
}

// EncodeClarifier builds a clarifier (RIT) on/off command.
func EncodeClarifier(enabled bool) Packet {
	if enabled {
		return newPacket(OpClarOn)
	}
	return newPacket(OpClarOff)
}

// EncodeToggleVFO builds the VFO A/B toggle command.
func EncodeToggleVFO() Packet {
	return newPacket(OpToggleVFO)
}

// EncodeSetFrequency builds a set-frequency command for a frequency in MHz.
func EncodeSetFrequency(mhz float64) Packet {
	p := newPacket(OpSetFrequency)
	f := EncodeFrequency(mhz)
	copy(p[:4], f[:])
	return p
}

// EncodeSetMode builds a set-mode command. The mode code goes in byte 0.
func EncodeSetMode(mode Mode) Packet {
	p := newPacket(OpSetMode)
	p[0] = byte(mode)
	return p
}

// EncodeQuery builds a payload-less status query.
func EncodeQuery(op Opcode) Packet {
	return newPacket(op)
}
