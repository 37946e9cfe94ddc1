package bidisax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindString(t *testing.T) {
	// then
	assert.Equal(t, "StreamError", KindStreamError.String())
	assert.Equal(t, "MalformedInput", KindMalformedInput.String())
	assert.Equal(t, "InvalidArgument", KindInvalidArgument.String())
	assert.Equal(t, "LogicError", KindLogicError.String())
}

func TestIsKind(t *testing.T) {
	// given
	err := newMalformedInput("boom")

	// then
	assert.True(t, IsKind(err, KindMalformedInput))
	assert.False(t, IsKind(err, KindLogicError))
	assert.False(t, IsKind(errors.New("plain"), KindMalformedInput))
}

func TestErrorIsMatchesOnlyKind(t *testing.T) {
	// given
	a := newMalformedInput("one message")
	b := newMalformedInput("a different message")
	c := newLogicError("one message")

	// then
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestErrorUnwrap(t *testing.T) {
	// given
	wrapped := errors.New("underlying")
	e := &Error{Kind: KindStreamError, Msg: "wrapping", Err: wrapped}

	// then
	assert.Equal(t, wrapped, errors.Unwrap(e))
	assert.Contains(t, e.Error(), "underlying")
}
