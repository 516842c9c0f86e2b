package ux

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padup/padup/internal/errors"
)

type checkout struct {
	Reference string `json:"reference" yaml:"reference"`
	URL       string `json:"authorization_url" yaml:"authorization_url"`
}

type listing []string

func (l listing) Table() Table {
	t := Table{Headers: []string{"SLUG", "NAME"}, Empty: "No shortlets found"}
	for _, s := range l {
		t.Rows = append(t.Rows, []string{s, "name of " + s})
	}
	return t
}

type greeting string

func (g greeting) String() string { return "hello " + string(g) }

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml"} {
		assert.NoError(t, ValidFormat(f), f)
	}
	err := ValidFormat("xml")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
}

func TestRender_JSONKeepsURLsReadable(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, FormatJSON, checkout{Reference: "PAY-1", URL: "https://pay.example/x?a=1&b=2"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"authorization_url": "https://pay.example/x?a=1&b=2"`)
	assert.Contains(t, buf.String(), "\n  \"reference\"")
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, checkout{Reference: "PAY-1", URL: "https://pay.example/x"}))
	assert.Equal(t, "reference: PAY-1\nauthorization_url: https://pay.example/x\n", buf.String())
}

func TestRender_Text(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatText, "Signed out"))
		assert.Equal(t, "Signed out\n", buf.String())
	})

	t.Run("stringer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, "", greeting("ada")))
		assert.Equal(t, "hello ada\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatText, listing{"lekki-loft", "vi"}))
		assert.Equal(t, "SLUG        NAME\nlekki-loft  name of lekki-loft\nvi          name of vi\n", buf.String())
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, FormatText, listing{}))
		assert.Equal(t, "No shortlets found\n", buf.String())
	})

	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, Render(&buf, FormatText, 42))
	})
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "xml", "x")
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.CodeOf(err))
	assert.Zero(t, buf.Len())
}

func TestTableWrite_FlattensCells(t *testing.T) {
	var buf bytes.Buffer
	table := Table{
		Headers: []string{"ID", "POST"},
		Rows:    [][]string{{"3", "Loved\tLekki\nwill return"}},
	}
	require.NoError(t, table.Write(&buf))
	assert.Equal(t, "ID  POST\n3   Loved Lekki will return\n", buf.String())
}

func TestTableWrite_HeadersWithoutEmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table{Headers: []string{"ID", "NAME"}}.Write(&buf))
	assert.Equal(t, "ID  NAME\n", buf.String())
}
