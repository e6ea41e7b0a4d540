package cmdutil

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name" yaml:"name"`
	Items []string `json:"items" yaml:"items"`
}

func TestOutputFlags_Write(t *testing.T) {
	v := sample{Name: "m3>0", Items: []string{"a", "b"}}
	text := func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "name: %s\n", v.Name)
		return err
	}

	tests := []struct {
		format string
		want   string
	}{
		{FormatText, "name: m3>0\n"},
		{FormatJSON, "{\n  \"name\": \"m3>0\",\n  \"items\": [\n    \"a\",\n    \"b\"\n  ]\n}\n"},
		{FormatYAML, "name: m3>0\nitems:\n  - a\n  - b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f := OutputFlags{Format: tt.format}
			require.NoError(t, f.Validate())

			var buf bytes.Buffer
			require.NoError(t, f.Write(&buf, v, text))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputFlags_Unknown(t *testing.T) {
	f := OutputFlags{Format: "xml"}
	assert.Error(t, f.Validate())
	assert.Error(t, f.Write(io.Discard, nil, nil))
}
