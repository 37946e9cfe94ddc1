package bidisax

// QName is a qualified name: a namespace URI, an optional prefix and a
// mandatory local part. Namespace-URI resolution is out of scope for
// this module, so NamespaceURI is always empty in names the tokenizer
// produces; a QName carries the raw prefix exactly as it appeared in
// the document.
type QName struct {
	Prefix       string
	Local        string
	NamespaceURI string
}

// String renders the QName the way it would appear in a document:
// "prefix:local", or just "local" when there is no prefix.
func (n QName) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Equal compares the namespace URI, the prefix and the local part.
func (n QName) Equal(other QName) bool {
	return n.NamespaceURI == other.NamespaceURI && n.Prefix == other.Prefix && n.Local == other.Local
}

// Attribute is a name/value pair attached to a StartElement.
type Attribute struct {
	Name  QName
	Value string
}

// SameNameAs reports whether two attributes share a QName, ignoring
// their values. Distinct from Go's built-in struct equality, which
// would also compare Value.
func (a Attribute) SameNameAs(other Attribute) bool {
	return a.Name.Equal(other.Name)
}

// Attributes is an ordered attribute list: document order when produced
// by forward traversal, reverse document order when produced by
// reverse traversal.
type Attributes []Attribute

// FindByName returns the first attribute with the given QName and
// reports whether one was found.
func (a Attributes) FindByName(name QName) (Attribute, bool) {
	for _, attr := range a {
		if attr.Name.Equal(name) {
			return attr, true
		}
	}
	return Attribute{}, false
}
