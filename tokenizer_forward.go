package bidisax

import (
	"fmt"
	"io"
)

// tokenizeForward returns the next batch of forward events (usually
// one, two for a self-closing tag), skipping constructs that produce
// none (the XML declaration). io.EOF signals a clean end of stream.
func (r *Reader) tokenizeForward() ([]Event, error) {
	for {
		evs, err := r.readOneForward()
		if err != nil {
			return nil, err
		}
		if len(evs) > 0 {
			return evs, nil
		}
	}
}

func (r *Reader) readOneForward() ([]Event, error) {
	b, err := r.cur.readByte()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, r.streamErr(err)
	}
	if b == '<' {
		return r.forwardTag()
	}
	r.cur.unreadByte()
	return r.forwardText()
}

func (r *Reader) forwardTag() ([]Event, error) {
	b, err := r.cur.readByte()
	if err != nil {
		return nil, r.eofToMalformed(err, "tag incomplete")
	}
	switch {
	case b == '?':
		return r.forwardProcInst()
	case b == '!':
		return r.forwardMarkupDecl()
	case b == '/':
		return r.forwardEndTag()
	case isElementNameStart(b):
		r.cur.unreadByte()
		return r.forwardStartTag()
	default:
		return nil, newMalformedInput(fmt.Sprintf("invalid byte %q after '<'", b))
	}
}

// readNamePart reads one local/prefix part of a name: a validFirst
// byte followed by name bytes, stopping at (and returning, already
// consumed) the first byte that isn't a name byte.
func (r *Reader) readNamePart(validFirst func(byte) bool) (string, byte, error) {
	b, err := r.cur.readByte()
	if err != nil {
		return "", 0, r.eofToMalformed(err, "name incomplete")
	}
	if !validFirst(b) {
		return "", 0, newMalformedInput(fmt.Sprintf("invalid first byte %q in name", b))
	}
	buf := []byte{b}
	for {
		b, err = r.cur.readByte()
		if err != nil {
			return "", 0, r.eofToMalformed(err, "name incomplete")
		}
		if isNameByte(b) {
			buf = append(buf, b)
			continue
		}
		return string(buf), b, nil
	}
}

func (r *Reader) readQName(validFirst func(byte) bool) (QName, byte, error) {
	first, term, err := r.readNamePart(validFirst)
	if err != nil {
		return QName{}, 0, err
	}
	if term != ':' {
		return QName{Local: first}, term, nil
	}
	local, term2, err := r.readNamePart(validFirst)
	if err != nil {
		return QName{}, 0, err
	}
	if term2 == ':' {
		return QName{}, 0, newMalformedInput("qualified name cannot contain two ':' separators")
	}
	return QName{Prefix: first, Local: local}, term2, nil
}

func (r *Reader) forwardStartTag() ([]Event, error) {
	name, term, err := r.readQName(isElementNameStart)
	if err != nil {
		return nil, err
	}
	attrs, term, err := r.forwardAttributes(term)
	if err != nil {
		return nil, err
	}
	switch term {
	case '>':
		return []Event{StartElement{Name: name, Attrs: attrs}}, nil
	case '/':
		b, err := r.cur.readByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "self-closing tag incomplete")
		}
		if b != '>' {
			return nil, newMalformedInput(fmt.Sprintf("expected '>' after '/', got %q", b))
		}
		return []Event{StartElement{Name: name, Attrs: attrs}, EndElement{Name: name}}, nil
	default:
		return nil, newMalformedInput(fmt.Sprintf("unexpected byte %q in start tag", term))
	}
}

func (r *Reader) forwardEndTag() ([]Event, error) {
	name, term, err := r.readQName(isElementNameStart)
	if err != nil {
		return nil, err
	}
	for isWhitespaceByte(term) {
		term, err = r.cur.readByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "end tag incomplete")
		}
	}
	if term != '>' {
		return nil, newMalformedInput(fmt.Sprintf("unexpected byte %q in end tag", term))
	}
	return []Event{EndElement{Name: name}}, nil
}

// forwardAttributes reads zero or more attributes starting from term,
// the byte that follows the element name (already consumed). It
// returns the attribute list and the first non-whitespace byte after
// them (already consumed), which is always '>' or '/'.
func (r *Reader) forwardAttributes(term byte) (Attributes, byte, error) {
	var attrs Attributes
	var err error
	for {
		for isWhitespaceByte(term) {
			term, err = r.cur.readByte()
			if err != nil {
				return nil, 0, r.eofToMalformed(err, "tag incomplete")
			}
		}
		if term == '>' || term == '/' {
			return attrs, term, nil
		}
		r.cur.unreadByte()
		attr, err := r.forwardAttribute()
		if err != nil {
			return nil, 0, err
		}
		attrs = append(attrs, attr)
		term, err = r.cur.readByte()
		if err != nil {
			return nil, 0, r.eofToMalformed(err, "tag incomplete")
		}
	}
}

func (r *Reader) forwardAttribute() (Attribute, error) {
	name, term, err := r.readQName(isElementNameStart)
	if err != nil {
		return Attribute{}, err
	}
	for isWhitespaceByte(term) {
		term, err = r.cur.readByte()
		if err != nil {
			return Attribute{}, r.eofToMalformed(err, "attribute incomplete")
		}
	}
	if term != '=' {
		return Attribute{}, newMalformedInput(fmt.Sprintf("expected '=' after attribute name, got %q", term))
	}
	b, err := r.cur.readByte()
	if err != nil {
		return Attribute{}, r.eofToMalformed(err, "attribute incomplete")
	}
	for isWhitespaceByte(b) {
		b, err = r.cur.readByte()
		if err != nil {
			return Attribute{}, r.eofToMalformed(err, "attribute incomplete")
		}
	}
	if b != '"' && b != '\'' {
		return Attribute{}, newMalformedInput(fmt.Sprintf("attribute value must start with a quote, got %q", b))
	}
	value, err := r.readQuotedForward(b)
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{Name: name, Value: value}, nil
}

func (r *Reader) readQuotedForward(quote byte) (string, error) {
	var buf []byte
	for {
		b, err := r.cur.readByte()
		if err != nil {
			return "", r.eofToMalformed(err, "quoted attribute value incomplete")
		}
		switch {
		case b == quote:
			return string(buf), nil
		case b == '&':
			resolved, err := r.resolveEntityForward()
			if err != nil {
				return "", err
			}
			buf = append(buf, resolved...)
		default:
			buf = append(buf, b)
		}
	}
}

// resolveEntityForward reads an entity name up to ';' after an
// already-consumed '&' and returns its replacement text.
func (r *Reader) resolveEntityForward() (string, error) {
	var name []byte
	for {
		b, err := r.cur.readByte()
		if err != nil {
			return "", r.eofToMalformed(err, "entity reference incomplete")
		}
		if b == ';' {
			repl, ok := r.entities.resolveForward(string(name))
			if !ok {
				return "", newMalformedInput(fmt.Sprintf("unable to resolve entity '&%s;'", name))
			}
			return repl, nil
		}
		if b == '<' || b == '&' {
			return "", newMalformedInput(fmt.Sprintf("unexpected byte %q in entity reference", b))
		}
		name = append(name, b)
	}
}

// forwardText reads character data up to (not including) the next '<'
// or the end of the stream, using the SWAR scanner on the buffered window for the
// common case. It resolves entities inline and, when the full run is
// XML whitespace, preserves that in IsWhitespace.
func (r *Reader) forwardText() ([]Event, error) {
	var buf []byte
	ws := true
	sawEntity := false
	for {
		window := r.cur.bufferedForward()
		if len(window) == 0 {
			more, err := r.cur.growForward()
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
		n, hit, partWS := scanForAny(window, '<', '&')
		buf = append(buf, window[:n]...)
		ws = ws && partWS
		r.cur.consumeForward(n)
		if n == len(window) {
			continue
		}
		if hit == '<' {
			break
		}
		// hit == '&'
		if _, err := r.cur.readByte(); err != nil {
			return nil, r.eofToMalformed(err, "entity reference incomplete")
		}
		sawEntity = true
		resolved, err := r.resolveEntityForward()
		if err != nil {
			return nil, err
		}
		buf = append(buf, resolved...)
	}
	text := string(buf)
	if sawEntity {
		ws = isAllWhitespace(text)
	}
	return []Event{Characters{Text: text, IsWhitespace: ws}}, nil
}

func (r *Reader) forwardMarkupDecl() ([]Event, error) {
	b, err := r.cur.readByte()
	if err != nil {
		return nil, r.eofToMalformed(err, "markup declaration incomplete")
	}
	if b != '-' {
		return nil, newMalformedInput("only '<!--' comments are supported in markup declarations")
	}
	b, err = r.cur.readByte()
	if err != nil {
		return nil, r.eofToMalformed(err, "comment incomplete")
	}
	if b != '-' {
		return nil, newMalformedInput("only '<!--' comments are supported in markup declarations")
	}
	return r.forwardComment()
}

func (r *Reader) forwardComment() ([]Event, error) {
	var data []byte
	matched := 0
	for {
		b, err := r.cur.readByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "comment incomplete")
		}
		switch {
		case b == '-' && matched < 2:
			matched++
		case b == '-':
			// a third dash in a row is body text; the last two may still end the comment
			data = append(data, '-')
		case b == '>' && matched >= 2:
			return []Event{Comment{Text: string(data)}}, nil
		default:
			for i := 0; i < matched; i++ {
				data = append(data, '-')
			}
			matched = 0
			data = append(data, b)
		}
	}
}

func (r *Reader) forwardProcInst() ([]Event, error) {
	var name []byte
	for {
		b, err := r.cur.readByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "processing instruction incomplete")
		}
		switch {
		case b == '?' || b == '>':
			return nil, newMalformedInput("processing instruction ended before its target name could be read")
		case isWhitespaceByte(b):
			if len(name) == 0 {
				return nil, newMalformedInput("processing instruction without target name")
			}
			return r.forwardProcInstBody(string(name))
		default:
			if len(name) == 0 && !isElementNameStart(b) {
				return nil, newMalformedInput(fmt.Sprintf("invalid first byte %q of processing instruction target", b))
			}
			name = append(name, b)
		}
	}
}

func (r *Reader) forwardProcInstBody(target string) ([]Event, error) {
	isXMLDecl := isXMLTarget(target)
	var data []byte
	matched := 0
	for {
		b, err := r.cur.readByte()
		if err != nil {
			return nil, r.eofToMalformed(err, "processing instruction incomplete")
		}
		if b == '?' && matched == 0 {
			matched = 1
			continue
		}
		if b == '>' && matched == 1 {
			if isXMLDecl {
				return nil, nil
			}
			for len(data) > 0 && isWhitespaceByte(data[0]) {
				data = data[1:]
			}
			return []Event{ProcessingInstruction{Target: target, Data: string(data)}}, nil
		}
		if matched > 0 {
			data = append(data, '?')
			matched = 0
		}
		data = append(data, b)
	}
}
