package bidisax

// isWhitespaceByte reports whether b is XML whitespace: space, tab, CR, LF.
func isWhitespaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isElementNameStart covers the grammar this module supports for the
// first byte of an element or attribute local/prefix part: letters and
// underscore. Full XML Name production (including most of Unicode) is
// intentionally not replicated; see the Non-goals around validation.
func isElementNameStart(b byte) bool {
	return isAlpha(b) || b == '_'
}

func isNameByte(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '.' || b == '-' || b == '_'
}

// isXMLTarget reports whether s is "xml" case-insensitively, the
// reserved processing-instruction target that introduces (and is
// silently discarded as) an XML declaration.
func isXMLTarget(s string) bool {
	return len(s) == 3 && s[0]|0x20 == 'x' && s[1]|0x20 == 'm' && s[2]|0x20 == 'l'
}

func isAllWhitespace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isWhitespaceByte(s[i]) {
			return false
		}
	}
	return true
}

func reverseBytesInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func reverseBytesCopy(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

func reverseString(s string) string {
	b := []byte(s)
	reverseBytesInPlace(b)
	return string(b)
}
