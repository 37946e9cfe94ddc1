package bidisax

import (
	"encoding/binary"
	"math/bits"

	"github.com/klauspost/cpuid/v2"
)

// canUseSSE gates the wide scan path (through canUseWideScan) on the
// CPU features it needs; canUseAVX2 is computed alongside it but no
// scan consults it. The scan itself is a portable word-at-a-time (SWAR) byte
// scan built on encoding/binary and math/bits, not actual SSE2/AVX2
// intrinsics, but it still benefits from the same BMI1 bit-counting
// instructions those CPUs carry.
var canUseSSE = cpuid.CPU.Has(cpuid.SSE2) && cpuid.CPU.Has(cpuid.BMI1)
var canUseAVX2 = canUseSSE && cpuid.CPU.Has(cpuid.AVX2)
var canUseWideScan = canUseSSE

const loBits = 0x0101010101010101
const hiBits = 0x8080808080808080

func broadcastByte(b byte) uint64 { return loBits * uint64(b) }

// zeroByteMask is the classic SWAR "has a zero byte" trick: a nonzero
// result has its high bit set in every lane that was zero in v.
func zeroByteMask(v uint64) uint64 { return (v - loBits) &^ v & hiBits }

// scanForAny scans window from the start for the first occurrence of
// byte a or byte b. It returns the number of bytes preceding the
// match (== len(window) if neither is found), the byte that matched
// (0 if none), and whether every byte scanned before the match is
// XML whitespace.
func scanForAny(window []byte, a, b byte) (n int, hit byte, allWhitespace bool) {
	if canUseWideScan {
		return scanForAnySWAR(window, a, b)
	}
	return scanForAnyGeneric(window, a, b)
}

func scanForAnyGeneric(window []byte, a, b byte) (int, byte, bool) {
	ws := true
	for i, c := range window {
		if c == a || c == b {
			return i, c, ws
		}
		if !isWhitespaceByte(c) {
			ws = false
		}
	}
	return len(window), 0, ws
}

func scanForAnySWAR(window []byte, a, b byte) (int, byte, bool) {
	ma := broadcastByte(a)
	mb := broadcastByte(b)
	ws := true
	i := 0
	for i+8 <= len(window) {
		word := binary.LittleEndian.Uint64(window[i : i+8])
		mask := zeroByteMask(word^ma) | zeroByteMask(word^mb)
		if mask != 0 {
			off := bits.TrailingZeros64(mask) / 8
			for j := 0; j < off; j++ {
				if !isWhitespaceByte(window[i+j]) {
					ws = false
				}
			}
			return i + off, window[i+off], ws
		}
		if ws {
			for j := 0; j < 8; j++ {
				if !isWhitespaceByte(window[i+j]) {
					ws = false
					break
				}
			}
		}
		i += 8
	}
	n, hit, tailWS := scanForAnyGeneric(window[i:], a, b)
	return i + n, hit, ws && tailWS
}

// scanForAnyFromEnd mirrors scanForAny for the reverse tokenizer: it
// scans window from its end backward, looking for the first (i.e.
// rightmost) occurrence of a or b. n is the number of bytes between
// the end of window and the match.
func scanForAnyFromEnd(window []byte, a, b byte) (n int, hit byte, allWhitespace bool) {
	if canUseWideScan {
		return scanForAnyFromEndSWAR(window, a, b)
	}
	return scanForAnyFromEndGeneric(window, a, b)
}

func scanForAnyFromEndGeneric(window []byte, a, b byte) (int, byte, bool) {
	ws := true
	for i := len(window) - 1; i >= 0; i-- {
		c := window[i]
		if c == a || c == b {
			return len(window) - 1 - i, c, ws
		}
		if !isWhitespaceByte(c) {
			ws = false
		}
	}
	return len(window), 0, ws
}

func scanForAnyFromEndSWAR(window []byte, a, b byte) (int, byte, bool) {
	ma := broadcastByte(a)
	mb := broadcastByte(b)
	ws := true
	end := len(window)
	for end-8 >= 0 {
		word := binary.LittleEndian.Uint64(window[end-8 : end])
		mask := zeroByteMask(word^ma) | zeroByteMask(word^mb)
		if mask != 0 {
			off := bits.LeadingZeros64(mask) / 8
			// zeroByteMask may also flag lanes directly above a real
			// match (borrow propagation), so step down to the highest
			// lane that actually holds a or b.
			for window[end-1-off] != a && window[end-1-off] != b {
				off++
			}
			for j := 7; j > 7-off; j-- {
				if !isWhitespaceByte(window[end-8+j]) {
					ws = false
				}
			}
			n := off
			return n, window[end-1-n], ws
		}
		if ws {
			for j := end - 8; j < end; j++ {
				if !isWhitespaceByte(window[j]) {
					ws = false
					break
				}
			}
		}
		end -= 8
	}
	n, hit, tailWS := scanForAnyFromEndGeneric(window[:end], a, b)
	return len(window) - end + n, hit, ws && tailWS
}
