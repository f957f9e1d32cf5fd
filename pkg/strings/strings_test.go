package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToStringRoundTrip(t *testing.T) {
	b := []byte("hello reservoir")
	s := BytesToString(b)
	assert.Equal(t, "hello reservoir", s)

	assert.Equal(t, "", BytesToString(nil))
	assert.Nil(t, StringToBytes(""))
	assert.Equal(t, []byte("abc"), StringToBytes("abc"))
}

func TestCloneOwnsMemory(t *testing.T) {
	b := []byte("mutable")
	s := BytesToString(b)
	cloned := Clone(s)

	b[0] = 'X'
	assert.Equal(t, "Xutable", s, "view shares memory")
	assert.Equal(t, "mutable", cloned, "clone does not")
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(8)
	b.WriteString("acquire")
	require.NoError(t, b.WriteByte('/'))
	n, err := b.Write([]byte("release"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	assert.Equal(t, "acquire/release", b.String())
	assert.Equal(t, 15, b.Len())

	b.Reset()
	assert.Equal(t, 0, b.Len())
}

func TestSprintf(t *testing.T) {
	assert.Equal(t, "plain", Sprintf("plain"))
	assert.Equal(t, "pool widgets: 3 free", Sprintf("pool %s: %d free", "widgets", 3))
}

func TestConcat(t *testing.T) {
	assert.Equal(t, "", Concat())
	assert.Equal(t, "one", Concat("one"))
	assert.Equal(t, "a-b-c", Concat("a", "-", "b", "-", "c"))
}

func TestPooledBuildersSurviveChurn(t *testing.T) {
	for i := 0; i < 100; i++ {
		b := GetBuilder(64)
		b.WriteString("cycle")
		assert.Equal(t, "cycle", b.String())
		PutBuilder(b)
	}

	large := GetBuilder(1024)
	large.WriteString("big")
	assert.Equal(t, "big", large.String())
	PutBuilder(large)
}
