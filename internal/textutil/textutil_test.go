package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.NotEqual(t, Hash("a"), Hash("b"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "hello...", Truncate("hello world", 5))
	assert.Equal(t, "héll...", Truncate("héllo", 4))
	assert.Equal(t, `a\nb`, Truncate("a\nb", 10))
}
