package bidisax

// entityDict holds the forward (name -> replacement) and reverse
// (name -> replacement, both stored byte-reversed) entity tables.
//
// The reverse table's keys and values are pre-reversed at insertion
// time. That lets the reverse tokenizer, which accumulates text
// right-to-left and reverses the whole accumulated run once at
// emission time, splice a resolved replacement directly into that
// run without a second, separate reversal pass over just the
// replacement bytes.
type entityDict struct {
	forward   map[string]string
	reverse   map[string]string
	predefined map[string]bool
}

func newEntityDict() *entityDict {
	d := &entityDict{
		forward:    make(map[string]string, 8),
		reverse:    make(map[string]string, 8),
		predefined: make(map[string]bool, 5),
	}
	for name, repl := range predefinedEntities {
		d.forward[name] = repl
		d.reverse[reverseString(name)] = reverseString(repl)
		d.predefined[name] = true
	}
	return d
}

// predefinedEntities are the five entities XML defines without a DTD.
var predefinedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"apos": "'",
	"quot": "\"",
}

// add registers name -> replacement in both directions. The five
// predefined entities are seeded at construction and cannot be
// redefined; attempting to do so is an InvalidArgument.
func (d *entityDict) add(name, replacement string) error {
	if name == "" {
		return newInvalidArgument("entity name must not be empty")
	}
	if d.predefined[name] {
		return newInvalidArgument("entity \"" + name + "\" is predefined and cannot be redefined")
	}
	d.forward[name] = replacement
	d.reverse[reverseString(name)] = reverseString(replacement)
	return nil
}

func (d *entityDict) resolveForward(name string) (string, bool) {
	repl, ok := d.forward[name]
	return repl, ok
}

// resolveReverse looks up a name accumulated by scanning backward
// (already in reversed byte order, matching the reverse table's keys)
// and returns its replacement, itself still reversed.
func (d *entityDict) resolveReverse(reversedName string) (string, bool) {
	repl, ok := d.reverse[reversedName]
	return repl, ok
}
