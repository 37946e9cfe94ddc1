package bidisax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// reverseEventSlice returns a copy of evs in reverse order, used to
// compare a reverse traversal against a forward one per the round-trip
// property: reversing the reverse-traversal's event sequence yields
// the same sequence forward produced (property (2) in the round-trip
// guarantee), self-closing pairs included (S1). Only attribute order
// within an element is permitted to differ (S6); assertRoundTrips
// compares exactly, so that case is checked separately below.
func reverseEventSlice(evs []Event) []Event {
	out := make([]Event, len(evs))
	for i, ev := range evs {
		out[len(evs)-1-i] = ev
	}
	return out
}

func assertRoundTrips(t *testing.T, doc string) {
	fwd := NewReader(strings.NewReader(doc))
	fwdEvents := drainForward(t, fwd)

	rev := NewReader(strings.NewReader(doc))
	revEvents := drainBackward(t, rev)

	assert.Equal(t, len(fwdEvents), len(revEvents), "doc=%q", doc)
	assert.Equal(t, fwdEvents, reverseEventSlice(revEvents), "doc=%q", doc)
}

func TestRoundTripSimpleDocument(t *testing.T) {
	assertRoundTrips(t, "<a><b>text</b><c/></a>")
}

func TestRoundTripWithComments(t *testing.T) {
	assertRoundTrips(t, "<!-- top --><root><!-- inner -->x<!-- trailing --></root>")
}

func TestRoundTripWithEntities(t *testing.T) {
	assertRoundTrips(t, `<r a="1&amp;2">3&lt;4</r>`)
}

func TestRoundTripWithProcessingInstruction(t *testing.T) {
	assertRoundTrips(t, `<?xml version="1.0"?><r><?target data?></r>`)
}

func TestRoundTripDeeplyNested(t *testing.T) {
	assertRoundTrips(t, "<a><b><c><d><e>leaf</e></d></c></b></a>")
}

func TestRoundTripMixedSiblings(t *testing.T) {
	assertRoundTrips(t, "<r><a/><b>x</b><c/>tail</r>")
}

// Attribute order is explicitly permitted to differ between forward
// and reverse traversal (S6); this test checks only that forward and
// reverse agree on the set of (name, value) pairs per element, not
// their order.
func TestRoundTripAttributeSetMatchesDespiteOrderDifference(t *testing.T) {
	doc := `<r a="x" b="y" c="z"/>`
	fwd := NewReader(strings.NewReader(doc))
	fwdEvents := drainForward(t, fwd)
	rev := NewReader(strings.NewReader(doc))
	revEvents := drainBackward(t, rev)

	fwdStart := fwdEvents[0].(StartElement)
	var revStart StartElement
	for _, ev := range revEvents {
		if se, ok := ev.(StartElement); ok {
			revStart = se
		}
	}

	assert.ElementsMatch(t, fwdStart.Attrs, revStart.Attrs)
}

func BenchmarkNextEventFlatDocument(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<root>")
	for i := 0; i < 100; i++ {
		sb.WriteString(`<item attr="value">text</item>`)
	}
	sb.WriteString("</root>")
	doc := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(strings.NewReader(doc))
		for {
			has, err := r.HasNext()
			if err != nil || !has {
				break
			}
			if _, err := r.NextEvent(); err != nil {
				break
			}
		}
	}
}

func BenchmarkPreviousEventFlatDocument(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<root>")
	for i := 0; i < 100; i++ {
		sb.WriteString(`<item attr="value">text</item>`)
	}
	sb.WriteString("</root>")
	doc := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(strings.NewReader(doc))
		for {
			has, err := r.HasPrevious()
			if err != nil || !has {
				break
			}
			if _, err := r.PreviousEvent(); err != nil {
				break
			}
		}
	}
}
