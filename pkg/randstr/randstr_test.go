package randstr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomString(t *testing.T) {
	letters := "ABC23"
	g := New([]byte(letters))

	for _, length := range []int{0, 1, 6, 32} {
		s := g.GenerateRandomString(length)
		assert.Len(t, s, length)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(letters, r), "unexpected rune %q", r)
		}
	}
}
