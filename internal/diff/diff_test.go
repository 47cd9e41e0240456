package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnifiedRendersHunk(t *testing.T) {
	a := []byte("<resources>\n  <string name=\"app\">Old</string>\n</resources>\n")
	b := []byte("<resources>\n  <string name=\"app\">New</string>\n</resources>\n")
	body, oversize := Unified("a/values/strings.xml", "b/values/strings.xml", a, b, Options{})
	assert.False(t, oversize)
	assert.True(t, strings.HasPrefix(body, "--- a/values/strings.xml\n+++ b/values/strings.xml\n"), body)
	assert.Contains(t, body, "@@")
	assert.Contains(t, body, "-  <string name=\"app\">Old</string>\n")
	assert.Contains(t, body, "+  <string name=\"app\">New</string>\n")
}

func TestUnifiedOversize(t *testing.T) {
	body, oversize := Unified("a", "b", []byte("12345"), []byte("67890"), Options{MaxBytes: 8})
	assert.True(t, oversize)
	assert.Contains(t, body, "diff omitted (oversize)")
}

func TestUnifiedBinary(t *testing.T) {
	body, oversize := Unified("a", "b", []byte{0x89, 'P', 'N', 'G', 0}, []byte("x"), Options{})
	assert.False(t, oversize)
	assert.Contains(t, body, "diff omitted (binary)")
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("<resources/>")))
	assert.True(t, IsBinary([]byte{'a', 0, 'b'}))
	assert.False(t, IsBinary(nil))
}
