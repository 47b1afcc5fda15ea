package regexp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsAccepts(t *testing.T) {
	f, err := ParseFlags("gim")
	require.NoError(t, err)
	assert.True(t, f.Global)
	assert.True(t, f.IgnoreCase)
	assert.True(t, f.Multiline)
	assert.False(t, f.Unicode)
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	_, err := ParseFlags("z")
	require.Error(t, err)
}

func TestParseFlagsRejectsDuplicate(t *testing.T) {
	_, err := ParseFlags("gg")
	require.Error(t, err)
}

func TestFlagsStringRoundTrip(t *testing.T) {
	f, err := ParseFlags("gi")
	require.NoError(t, err)
	assert.Equal(t, "gi", f.String())
}

func TestExecSubFindsCaptureGroups(t *testing.T) {
	c, err := Compile(`(\w+)@(\w+)`, Flags{})
	require.NoError(t, err)

	res, err := c.ExecSub("contact me at alice@example", 0)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "alice@example", res.Groups[0].Value)
	assert.Equal(t, "alice", res.Groups[1].Value)
	assert.Equal(t, "example", res.Groups[2].Value)
}

func TestExecSubNoMatchReturnsNil(t *testing.T) {
	c, err := Compile(`xyz`, Flags{})
	require.NoError(t, err)

	res, err := c.ExecSub("abc", 0)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestExecSubStickyOnlyMatchesAtOffset(t *testing.T) {
	c, err := Compile(`b`, Flags{Sticky: true})
	require.NoError(t, err)

	res, err := c.ExecSub("abc", 0)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = c.ExecSub("abc", 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Index)
}

func TestMatchAllAdvancesPastEmptyMatches(t *testing.T) {
	c, err := Compile(`a*`, Flags{})
	require.NoError(t, err)

	results, err := c.MatchAll("baab")
	require.NoError(t, err)
	assert.True(t, len(results) > 1)
}

func TestSearchReturnsFirstMatchIndex(t *testing.T) {
	c, err := Compile(`b`, Flags{})
	require.NoError(t, err)

	idx, err := c.Search("aabb")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestSearchReturnsNegativeOneWhenNoMatch(t *testing.T) {
	c, err := Compile(`z`, Flags{})
	require.NoError(t, err)

	idx, err := c.Search("aabb")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestExpandReplacementDollarAmpersandAndGroups(t *testing.T) {
	c, err := Compile(`(\w+) (\w+)`, Flags{})
	require.NoError(t, err)

	res, err := c.ExecSub("hello world", 0)
	require.NoError(t, err)
	require.NotNil(t, res)

	out := ExpandReplacement("[$&] $2 $1", "hello world", res)
	assert.Equal(t, "[hello world] world hello", out)
}

func TestExpandReplacementNamedGroup(t *testing.T) {
	c, err := Compile(`(?<year>\d+)-(?<month>\d+)`, Flags{})
	require.NoError(t, err)

	res, err := c.ExecSub("2024-01", 0)
	require.NoError(t, err)
	require.NotNil(t, res)

	out := ExpandReplacement("$<month>/$<year>", "2024-01", res)
	assert.Equal(t, "01/2024", out)
}

func TestLegacyRecordLegacyCapturesNumberedGroups(t *testing.T) {
	c, err := Compile(`(\w+)-(\w+)`, Flags{})
	require.NoError(t, err)

	res, err := c.ExecSub("foo-bar", 0)
	require.NoError(t, err)
	require.NotNil(t, res)

	var legacy Legacy
	legacy.RecordLegacy("foo-bar", 0, res, false)
	assert.Equal(t, "foo-bar", legacy.LastMatch)
	assert.Equal(t, "foo", legacy.Dollar(1))
	assert.Equal(t, "bar", legacy.Dollar(2))
}

func TestLegacyLeftContextVersion12SeesOnlySkippedSubstring(t *testing.T) {
	c, err := Compile(` `, Flags{Global: true})
	require.NoError(t, err)

	input := "hi there bye"
	var legacy Legacy

	first, err := c.ExecSub(input, 0)
	require.NoError(t, err)
	require.NotNil(t, first)
	legacy.RecordLegacy(input, 0, first, true)
	assert.Equal(t, "hi", legacy.LeftContext)

	second, err := c.ExecSub(input, first.Groups[0].End)
	require.NoError(t, err)
	require.NotNil(t, second)
	legacy.RecordLegacy(input, first.Groups[0].End, second, true)
	assert.Equal(t, "there", legacy.LeftContext)
}

func TestLegacyLeftContextLaterVersionsSeeWholePrefix(t *testing.T) {
	c, err := Compile(` `, Flags{Global: true})
	require.NoError(t, err)

	input := "hi there bye"
	var legacy Legacy

	first, err := c.ExecSub(input, 0)
	require.NoError(t, err)
	second, err := c.ExecSub(input, first.Groups[0].End)
	require.NoError(t, err)
	legacy.RecordLegacy(input, first.Groups[0].End, second, false)
	assert.Equal(t, "hi there", legacy.LeftContext)
}
