package cat

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// Absorbs binary floating point error in frac(v)*100, so 7.03 MHz does not
// encode as 7.029 MHz.
const freqGroupTolerance = 1e-7

// EncodeFrequency converts a frequency in MHz to the four frequency bytes of
// a set-frequency packet, most significant digit pair first. The resolution
// is 10 Hz.
//
// Each two-digit group is written by reading its decimal text as a
// hexadecimal numeral, so 14.255 MHz becomes 01 42 55 00. A group that comes
// out as 100 is stored as the low byte of 0x100.
func EncodeFrequency(mhz float64) (b [4]byte) {
	v := mhz * 1000
	for i := len(b) - 1; i >= 0; i-- {
		_, frac := math.Modf(v)
		// the explicit conversion rounds the product before the add, so it
		// can't be fused into an FMA (arm64) and change the group
		b[i] = decimalAsHex(int(float64(frac*100) + freqGroupTolerance))
		v /= 100
	}
	return
}

func decimalAsHex(n int) byte {
	v, err := strconv.ParseUint(strconv.Itoa(n), 16, 64)
	if err != nil {
		return 0
	}
	return byte(v)
}

// DecodeFrequency is the inverse of EncodeFrequency. Only the first four
// bytes of b are used.
func DecodeFrequency(b []byte) (float64, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: frequency needs 4 bytes, got %d", ErrShortRead, len(b))
	}
	digits := hex.EncodeToString(b[:4])
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: frequency digits %s", ErrMalformedReply, digits)
	}
	return float64(n) / 100000, nil
}

// FormatFrequency renders a frequency the way the status record stores it.
func FormatFrequency(mhz float64) string {
	return fmt.Sprintf("%.5f", mhz)
}
