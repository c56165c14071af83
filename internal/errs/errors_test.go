package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseErr_UnwrapAndMessage(t *testing.T) {
	underlying := errors.New("unexpected token")
	e := NewParseErr("foo.py", underlying)
	assert.ErrorIs(t, e, underlying)
	assert.Contains(t, e.Error(), "foo.py")
}

func TestStoreError_WithRecoverable(t *testing.T) {
	e := NewStoreError("load", "elements.bin", errors.New("bad version")).WithRecoverable(true)
	assert.True(t, e.Recoverable)
	assert.Contains(t, e.Error(), "elements.bin")
}

func TestMultiError_AddAndHasErrors(t *testing.T) {
	var m MultiError
	assert.False(t, m.HasErrors())
	m.Add(nil)
	assert.False(t, m.HasErrors())
	m.Add(errors.New("one"))
	m.Add(errors.New("two"))
	assert.True(t, m.HasErrors())
	assert.Len(t, m.Errors, 2)
	assert.Contains(t, m.Error(), "2 error(s)")
}

func TestRPCError_Message(t *testing.T) {
	e := NewRPCError("find_callers", "unknown element id")
	assert.Equal(t, "rpc: find_callers: unknown element id", e.Error())
}
