package bidisax

import (
	"fmt"
	"io"
)

// tokenizeBackward mirrors tokenizeForward for reverse traversal.
func (r *Reader) tokenizeBackward() ([]Event, error) {
	for {
		evs, err := r.readOneBackward()
		if err != nil {
			return nil, err
		}
		if len(evs) > 0 {
			return evs, nil
		}
	}
}

func (r *Reader) readOneBackward() ([]Event, error) {
	b, err := r.cur.readPrevByte()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, r.streamErr(err)
	}
	if b == '>' {
		return r.reverseTag()
	}
	r.cur.unreadPrevByte()
	return r.reverseText()
}

// reverseTag dispatches on the byte immediately preceding the '>'
// already consumed by readOneBackward.
func (r *Reader) reverseTag() ([]Event, error) {
	b, err := r.cur.readPrevByte()
	if err != nil {
		return nil, r.eofToMalformed(err, "tag incomplete")
	}
	switch {
	case b == '?':
		return r.reversePI()
	case isWhitespaceByte(b), b == '"', b == '\'':
		return r.reverseStartWithAttrs(b)
	case b == '/':
		return r.reverseSelfCloseOrEndTag()
	case b == '-':
		b2, err := r.cur.readPrevByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "tag incomplete")
		}
		if b2 == '-' {
			return r.reverseComment()
		}
		r.cur.unreadPrevByte()
		return r.reverseBareTag(b)
	default:
		return r.reverseBareTag(b)
	}
}

// readReverseQName reads a qualified name backward given its
// already-read last byte, local part first (since backward reading
// meets the local part before any prefix), switching to the prefix
// accumulator on ':'. It returns the assembled name and the
// terminating byte (already consumed).
func (r *Reader) readReverseQName(lastByte byte) (QName, byte, error) {
	if !isNameByte(lastByte) {
		return QName{}, 0, newMalformedInput(fmt.Sprintf("invalid byte %q in name", lastByte))
	}
	local := []byte{lastByte}
	var prefix []byte
	havePrefix := false
	for {
		b, err := r.cur.readPrevByte()
		if err != nil {
			return QName{}, 0, r.eofToMalformed(err, "name incomplete")
		}
		switch {
		case isNameByte(b):
			if havePrefix {
				prefix = append(prefix, b)
			} else {
				local = append(local, b)
			}
		case b == ':':
			if havePrefix {
				return QName{}, 0, newMalformedInput("qualified name cannot contain two ':' separators")
			}
			havePrefix = true
		default:
			reverseBytesInPlace(local)
			name := QName{Local: string(local)}
			if havePrefix {
				reverseBytesInPlace(prefix)
				name.Prefix = string(prefix)
			}
			return name, b, nil
		}
	}
}

// reverseBareTag handles a tag with no attributes: either an end tag
// (</name>) or a bare start tag (<name>), distinguished by what comes
// before the name once read backward.
func (r *Reader) reverseBareTag(lastByte byte) ([]Event, error) {
	name, term, err := r.readReverseQName(lastByte)
	if err != nil {
		return nil, err
	}
	switch term {
	case '<':
		return []Event{StartElement{Name: name}}, nil
	case '/':
		b, err := r.cur.readPrevByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "end tag incomplete")
		}
		if b != '<' {
			return nil, newMalformedInput(fmt.Sprintf("unexpected byte %q in end tag", b))
		}
		return []Event{EndElement{Name: name}}, nil
	default:
		return nil, newMalformedInput(fmt.Sprintf("unexpected byte %q before tag name", term))
	}
}

func (r *Reader) reverseSkipWhitespace(b byte) (byte, error) {
	for isWhitespaceByte(b) {
		var err error
		b, err = r.cur.readPrevByte()
		if err != nil {
			return 0, r.eofToMalformed(err, "tag incomplete")
		}
	}
	return b, nil
}

func (r *Reader) reverseSkipWhitespaceRead() (byte, error) {
	b, err := r.cur.readPrevByte()
	if err != nil {
		return 0, r.eofToMalformed(err, "attribute incomplete")
	}
	return r.reverseSkipWhitespace(b)
}

// reverseStartWithAttrs handles a (non self-closing) start tag read
// backward, entered either via whitespace before the closing '>' or
// directly via the closing quote of its last attribute's value.
func (r *Reader) reverseStartWithAttrs(b byte) ([]Event, error) {
	var err error
	b, err = r.reverseSkipWhitespace(b)
	if err != nil {
		return nil, err
	}
	var attrs Attributes
	if b == '"' || b == '\'' {
		attrs, b, err = r.reverseAttributes(b)
		if err != nil {
			return nil, err
		}
	}
	name, term, err := r.readReverseQName(b)
	if err != nil {
		return nil, err
	}
	if term != '<' {
		return nil, newMalformedInput(fmt.Sprintf("unexpected byte %q before start tag name", term))
	}
	return []Event{StartElement{Name: name, Attrs: attrs}}, nil
}

// reverseSelfCloseOrEndTag handles the '/' that immediately precedes
// '>'. If what follows (going backward) is a quote, attributes
// precede the name; otherwise the tag is a bare self-closing element.
// Either way this produces the self-close pair, EndElement first.
func (r *Reader) reverseSelfCloseOrEndTag() ([]Event, error) {
	b, err := r.cur.readPrevByte()
	if err != nil {
		return nil, r.eofToMalformed(err, "tag incomplete")
	}
	b, err = r.reverseSkipWhitespace(b)
	if err != nil {
		return nil, err
	}
	var attrs Attributes
	if b == '"' || b == '\'' {
		attrs, b, err = r.reverseAttributes(b)
		if err != nil {
			return nil, err
		}
	}
	name, term, err := r.readReverseQName(b)
	if err != nil {
		return nil, err
	}
	if term != '<' {
		return nil, newMalformedInput(fmt.Sprintf("unexpected byte %q before self-closing tag name", term))
	}
	return []Event{EndElement{Name: name}, StartElement{Name: name, Attrs: attrs}}, nil
}

// reverseAttributes reads one or more attributes backward, the first
// already positioned at its closing quote. Attributes are returned in
// the order they were encountered scanning backward (last-in-document
// attribute first, the mirror image of forward document order). This
// reversed order is preserved rather than undone, since round-trip
// equivalence only requires the same set of (name, value) pairs, not
// the same sequence, and this is what a caller reading backward
// actually saw.
func (r *Reader) reverseAttributes(firstQuote byte) (Attributes, byte, error) {
	var attrs Attributes
	quote := firstQuote
	for {
		attr, b, err := r.reverseAttribute(quote)
		if err != nil {
			return nil, 0, err
		}
		attrs = append(attrs, attr)
		b, err = r.reverseSkipWhitespace(b)
		if err != nil {
			return nil, 0, err
		}
		if b == '"' || b == '\'' {
			quote = b
			continue
		}
		return attrs, b, nil
	}
}

func (r *Reader) reverseAttribute(quote byte) (Attribute, byte, error) {
	value, err := r.readQuotedReverse(quote)
	if err != nil {
		return Attribute{}, 0, err
	}
	b, err := r.reverseSkipWhitespaceRead()
	if err != nil {
		return Attribute{}, 0, err
	}
	if b != '=' {
		return Attribute{}, 0, newMalformedInput(fmt.Sprintf("expected '=' in attribute, got %q", b))
	}
	b, err = r.reverseSkipWhitespaceRead()
	if err != nil {
		return Attribute{}, 0, err
	}
	name, term, err := r.readReverseQName(b)
	if err != nil {
		return Attribute{}, 0, err
	}
	return Attribute{Name: name, Value: value}, term, nil
}

func (r *Reader) readQuotedReverse(quote byte) (string, error) {
	var buf []byte
	for {
		b, err := r.cur.readPrevByte()
		if err != nil {
			return "", r.eofToMalformed(err, "attribute value incomplete")
		}
		switch {
		case b == quote:
			reverseBytesInPlace(buf)
			return string(buf), nil
		case b == ';':
			resolved, err := r.resolveEntityReverse(quote)
			if err != nil {
				return "", err
			}
			buf = append(buf, resolved...)
		default:
			buf = append(buf, b)
		}
	}
}

// resolveEntityReverse reads an entity name backward after an
// already-consumed ';', stopping at '&' (success), or at '>'/';'/the
// active quote delimiter (the ';' was not actually an entity
// reference; the fragment and ';' are returned as literal text).
// Reaching the start of the stream mid-name falls back the same way.
// The returned bytes are
// already in the byte order the reverse-accumulating caller wants:
// reversing them (together with everything else accumulated) once at
// emission time restores true reading order.
func (r *Reader) resolveEntityReverse(delim byte) ([]byte, error) {
	var name []byte
	for {
		b, err := r.cur.readPrevByte()
		if err == io.EOF {
			return append([]byte{';'}, name...), nil
		}
		if err != nil {
			return nil, r.streamErr(err)
		}
		switch {
		case b == '&':
			repl, ok := r.entities.resolveReverse(string(name))
			if !ok {
				reverseBytesInPlace(name)
				return nil, newMalformedInput(fmt.Sprintf("unable to resolve entity '&%s;'", name))
			}
			return []byte(repl), nil
		case b == '>' || b == ';' || (delim != 0 && b == delim):
			r.cur.unreadPrevByte()
			return append([]byte{';'}, name...), nil
		default:
			name = append(name, b)
		}
	}
}

// reverseText accumulates character data backward up to (not
// including) the '>' that ends the preceding tag.
func (r *Reader) reverseText() ([]Event, error) {
	var buf []byte
	ws := true
	sawEntity := false
	for {
		wnd := r.cur.bufferedBackward()
		if len(wnd) == 0 {
			more, err := r.cur.growBackward()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, r.streamErr(err)
			}
			if !more {
				break
			}
			continue
		}
		n, hit, partWS := scanForAnyFromEnd(wnd, '>', ';')
		tail := wnd[len(wnd)-n:]
		scanOrder := reverseBytesCopy(tail)
		buf = append(buf, scanOrder...)
		ws = ws && partWS
		r.cur.consumeBackward(n)
		if n == len(wnd) {
			continue
		}
		if hit == '>' {
			break
		}
		// hit == ';'
		if _, err := r.cur.readPrevByte(); err != nil {
			return nil, r.eofToMalformed(err, "entity reference incomplete")
		}
		sawEntity = true
		resolved, err := r.resolveEntityReverse(0)
		if err != nil {
			return nil, err
		}
		buf = append(buf, resolved...)
	}
	reverseBytesInPlace(buf)
	text := string(buf)
	if sawEntity {
		ws = isAllWhitespace(text)
	}
	return []Event{Characters{Text: text, IsWhitespace: ws}}, nil
}

func (r *Reader) reverseComment() ([]Event, error) {
	seq := []byte{'-', '-', '!', '<'}
	matched := 0
	var data []byte
	for {
		b, err := r.cur.readPrevByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "comment incomplete")
		}
		if b == seq[matched] {
			matched++
			if matched == len(seq) {
				reverseBytesInPlace(data)
				return []Event{Comment{Text: string(data)}}, nil
			}
			continue
		}
		for i := 0; i < matched; i++ {
			data = append(data, seq[i])
		}
		matched = 0
		if b == seq[0] {
			matched = 1
			continue
		}
		data = append(data, b)
	}
}

func (r *Reader) reversePI() ([]Event, error) {
	var data []byte
	targetLen := 0
	spaceCount := 0
	matchCount := 0
	for matchCount < 2 {
		b, err := r.cur.readPrevByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "processing instruction incomplete")
		}
		switch {
		case isWhitespaceByte(b):
			data = append(data, b)
			if targetLen > 0 {
				spaceCount = 1
			} else {
				spaceCount++
			}
			targetLen = 0
		case b == '?' && matchCount == 0:
			matchCount++
		case b == '<' && matchCount <= 1:
			if len(data) == 0 {
				return nil, newMalformedInput("processing instruction ended before its target name could be read")
			}
			reverseBytesInPlace(data)
			if targetLen <= 0 {
				return nil, newMalformedInput("processing instruction without target name")
			}
			if spaceCount == 0 {
				return nil, newMalformedInput("processing instruction ended before its target name could be read")
			}
			target := string(data[:targetLen])
			if isXMLTarget(target) {
				return nil, nil
			}
			if !isElementNameStart(target[0]) {
				return nil, newMalformedInput(fmt.Sprintf("invalid first byte %q of processing instruction target", target[0]))
			}
			body := string(data[targetLen+spaceCount:])
			return []Event{ProcessingInstruction{Target: target, Data: body}}, nil
		default:
			if matchCount > 0 {
				return nil, newMalformedInput("processing instruction target name interrupted by '?'")
			}
			targetLen++
			data = append(data, b)
		}
	}
	return nil, newMalformedInput("processing instruction incomplete")
}
