package idhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("function", "pkg/foo.go", "Bar")
	b := Generate("function", "pkg/foo.go", "Bar")
	assert.Equal(t, a, b)
}

func TestGenerate_KindPrefix(t *testing.T) {
	id := Generate("class", "pkg/foo.py", "Widget")
	assert.Contains(t, id, "class_")
}

func TestGenerate_DiffersByParts(t *testing.T) {
	a := Generate("function", "pkg/foo.go", "Bar")
	b := Generate("function", "pkg/foo.go", "Baz")
	assert.NotEqual(t, a, b)
}

func TestGenerate_DiffersByKind(t *testing.T) {
	a := Generate("function", "pkg/foo.go", "Bar")
	b := Generate("method", "pkg/foo.go", "Bar")
	assert.NotEqual(t, a, b)
}
