package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptyBody(t *testing.T) {
	doc, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, doc.IsEmpty())
	require.False(t, doc.IsObject())
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"x":`))
	require.Error(t, err)
}

func TestParseObjectRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(`{"x":1}`))
	require.NoError(t, err)
	require.True(t, doc.IsObject())
	require.Equal(t, int64(1), doc.Get("x").Int())
}

func TestSetOnEmptyBuildsObject(t *testing.T) {
	doc := Empty()
	require.NoError(t, doc.Set("n", 42))
	require.True(t, doc.IsObject())
	require.Equal(t, int64(42), doc.Get("n").Int())
}

func TestCloneIsIndependent(t *testing.T) {
	doc, err := Parse([]byte(`{"a":1}`))
	require.NoError(t, err)
	clone := doc.Clone()
	require.NoError(t, clone.Set("a", 2))
	require.Equal(t, int64(1), doc.Get("a").Int())
	require.Equal(t, int64(2), clone.Get("a").Int())
}

func TestFromObject(t *testing.T) {
	doc, err := FromObject(map[string]int{"n": 7})
	require.NoError(t, err)
	require.True(t, doc.IsObject())
	require.Equal(t, int64(7), doc.Get("n").Int())
}
