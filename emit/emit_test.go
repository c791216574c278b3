package emit

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/bodgit/s4c/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrames() []*frame.Frame {
	return []*frame.Frame{
		{Index: 1, Rows: []string{"12", "21"}},
		{Index: 2, Rows: []string{"1?", "\"\\"}},
	}
}

func testDescriptor(mode Mode) Descriptor {
	return Descriptor{
		Mode:    mode,
		Name:    "walk_cycle",
		Version: DefaultVersion,
		Frames:  2,
		Height:  2,
		Width:   2,
	}
}

const testBody = `char walk_cycle[3][3][3] = {

	//Sprite 1, index 0
	{
		"12",
		"21",
	},

	//Sprite 2, index 1
	{
		"1\?",
		"\"\\",
	},

};
`

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{VersionedData, Header, Implementation} {
		m, err := ParseMode(mode.String())
		require.Nil(t, err)
		assert.Equal(t, mode, m)
	}

	_, err := ParseMode("cfile")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestTargetName(t *testing.T) {
	tables := []struct {
		path string
		name string
	}{
		{"walk-cycle.png", "walk_cycle"},
		{"/tmp/sheets/hero sheet.v2.png", "hero_sheet_v2"},
		{"sprites/", "sprites"},
		{"already_ok", "already_ok"},
	}

	for _, table := range tables {
		assert.Equal(t, table.name, TargetName(table.path))
	}

	assert.Equal(t, "a_b_c", Identifier("a-b.c"))
	assert.Equal(t, "WALK_CYCLE_S4C_H_", MacroName("walk_cycle"))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "abc", Escape("abc"))
	assert.Equal(t, `a\?\\\"`, Escape(`a?\"`))
}

func TestEncodeVersionedData(t *testing.T) {
	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, testDescriptor(VersionedData), testFrames()))
	assert.Equal(t, "0.2.2\n"+testBody, b.String())
}

func TestEncodeHeader(t *testing.T) {
	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, testDescriptor(Header), testFrames()))

	want := `#ifndef WALK_CYCLE_S4C_H_
#define WALK_CYCLE_S4C_H_
#define WALK_CYCLE_S4C_H_VERSION "0.2.2"

/**
 * Declares animation matrix vector for walk_cycle.
 */
extern char walk_cycle[3][3][3];

#endif
`
	assert.Equal(t, want, b.String())
}

func TestEncodeImplementation(t *testing.T) {
	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, testDescriptor(Implementation), testFrames()))
	assert.Equal(t, "#include \"walk_cycle.h\"\n\n"+testBody, b.String())
}

var declaration = regexp.MustCompile(`char walk_cycle\[(\d+)\]\[(\d+)\]\[(\d+)\]`)

func TestEncodeDimensionsAgree(t *testing.T) {
	var dims []string
	for _, mode := range []Mode{VersionedData, Header, Implementation} {
		b := new(bytes.Buffer)
		require.Nil(t, Encode(b, testDescriptor(mode), testFrames()))
		m := declaration.FindStringSubmatch(b.String())
		require.NotNil(t, m)
		dims = append(dims, strings.Join(m[1:], "x"))
	}
	assert.Equal(t, []string{"3x3x3", "3x3x3", "3x3x3"}, dims)
}

func TestEncodeEmpty(t *testing.T) {
	d := testDescriptor(VersionedData)
	d.Frames = 0

	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, d, nil))
	assert.Equal(t, "0.2.2\nchar walk_cycle[1][3][3] = {\n\n};\n", b.String())
}

func TestEncodeMalformed(t *testing.T) {
	frames := testFrames()
	frames[1].Rows[0] = "123"

	for _, mode := range []Mode{VersionedData, Header, Implementation} {
		b := new(bytes.Buffer)
		err := Encode(b, testDescriptor(mode), frames)
		assert.ErrorIs(t, err, frame.ErrMalformed)
		assert.Equal(t, 0, b.Len())
	}

	b := new(bytes.Buffer)
	err := Encode(b, testDescriptor(VersionedData), frames[:1])
	assert.ErrorIs(t, err, frame.ErrMalformed)
}
