package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasefe/pgts/typemap"
)

func row(name string) *Declaration {
	return &Declaration{Name: name, Kind: KindRow, ExportAs: ExportDefault, Payload: Interface{}}
}

func TestOutputMerge(t *testing.T) {
	out := NewOutput()
	require.NoError(t, out.Merge("public/Film", row("Film")))
	require.NoError(t, out.Merge("public/Actor", row("Actor")))
	require.NoError(t, out.Merge("public/Film", row("FilmInitializer")))

	assert.Equal(t, []string{"public/Film", "public/Actor"}, out.Keys())
	assert.Equal(t, []string{"public/Actor", "public/Film"}, out.SortedKeys())
	assert.Equal(t, []string{"Film", "FilmInitializer"}, declNames(out.Declarations("public/Film")))
	assert.Equal(t, 2, out.Len())
}

func TestOutputMergeConflict(t *testing.T) {
	out := NewOutput()
	require.NoError(t, out.Merge("public/Film", row("Film")))

	err := out.Merge("public/Film", row("Extra"), row("Film"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "public/Film", conflict.Key)
	assert.Equal(t, "Film", conflict.Name)

	// A failed merge leaves the file untouched.
	assert.Equal(t, []string{"Film"}, declNames(out.Declarations("public/Film")))
}

func TestOutputMergeConflictWithinCall(t *testing.T) {
	out := NewOutput()
	err := out.Merge("public/Film", row("Film"), row("Film"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 0, out.Len())
}

func TestOutputMergeSharedIdentifier(t *testing.T) {
	id := &Declaration{Name: "FilmId", Kind: KindIdentifier, Payload: Alias{Type: typemap.Literal("number"), Brand: "FilmId"}}

	out := NewOutput()
	require.NoError(t, out.Merge("public/Film", id))
	require.NoError(t, out.Merge("public/Film", id))
	assert.Len(t, out.Declarations("public/Film"), 1)

	other := &Declaration{Name: "FilmId", Kind: KindIdentifier, Payload: Alias{Type: typemap.Literal("number"), Brand: "FilmId"}}
	assert.ErrorIs(t, out.Merge("public/Film", other), ErrConflict)
}

func TestOutputMergeRaw(t *testing.T) {
	out := NewOutput()
	raw := &Declaration{Kind: KindRaw, Payload: Raw{Lines: []string{"export {};"}}}
	require.NoError(t, out.Merge("index", raw, raw))
	assert.Len(t, out.Declarations("index"), 2)
}

func TestOutputMonotonic(t *testing.T) {
	out := NewOutput()
	require.NoError(t, out.Merge("a", row("A")))
	before := out.Declarations("a")

	require.NoError(t, out.Merge("a", row("B")))
	after := out.Declarations("a")

	require.GreaterOrEqual(t, len(after), len(before))
	for i := range before {
		assert.Same(t, before[i], after[i])
	}
}

func TestOutputReplaceAndRemove(t *testing.T) {
	out := NewOutput()
	require.NoError(t, out.Merge("a", row("A")))
	require.NoError(t, out.Merge("b", row("B")))

	require.NoError(t, out.Replace("a", []*Declaration{row("A2")}))
	assert.Equal(t, []string{"A2"}, declNames(out.Declarations("a")))

	require.NoError(t, out.Replace("c", []*Declaration{row("C")}))
	assert.Equal(t, []string{"a", "b", "c"}, out.Keys())

	assert.ErrorIs(t, out.Replace("a", []*Declaration{row("X"), row("X")}), ErrConflict)
	assert.Equal(t, []string{"A2"}, declNames(out.Declarations("a")))

	out.Remove("b")
	out.Remove("missing")
	assert.Equal(t, []string{"a", "c"}, out.Keys())
	_, ok := out.File("b")
	assert.False(t, ok)
}

func TestOutputClone(t *testing.T) {
	out := NewOutput()
	require.NoError(t, out.Merge("a", row("A")))

	c := out.Clone()
	require.NoError(t, c.Merge("a", row("B")))
	c.Remove("a")

	assert.Equal(t, []string{"A"}, declNames(out.Declarations("a")))
	assert.Equal(t, 0, c.Len())
}
