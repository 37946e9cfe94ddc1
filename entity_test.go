package bidisax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredefinedEntitiesResolveForward(t *testing.T) {
	// given
	d := newEntityDict()

	// then
	for name, want := range predefinedEntities {
		got, ok := d.resolveForward(name)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestPredefinedEntitiesResolveReverse(t *testing.T) {
	// given
	d := newEntityDict()

	// then
	for name, want := range predefinedEntities {
		got, ok := d.resolveReverse(reverseString(name))
		assert.True(t, ok)
		assert.Equal(t, reverseString(want), got)
	}
}

func TestAddCustomEntity(t *testing.T) {
	// given
	d := newEntityDict()

	// when
	err := d.add("copy", "©")

	// then
	assert.Nil(t, err)
	fwd, ok := d.resolveForward("copy")
	assert.True(t, ok)
	assert.Equal(t, "©", fwd)
	rev, ok := d.resolveReverse(reverseString("copy"))
	assert.True(t, ok)
	assert.Equal(t, reverseString("©"), rev)
}

func TestAddCustomEntityCannotRedefinePredefined(t *testing.T) {
	// given
	d := newEntityDict()

	// when
	err := d.add("amp", "oops")

	// then
	assert.NotNil(t, err)
	assert.True(t, IsKind(err, KindInvalidArgument))
	fwd, _ := d.resolveForward("amp")
	assert.Equal(t, "&", fwd)
}

func TestAddCustomEntityRejectsEmptyName(t *testing.T) {
	// when
	err := newEntityDict().add("", "x")

	// then
	assert.True(t, IsKind(err, KindInvalidArgument))
}
