package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats selectable with --output-format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// OutputFlags selects how results are printed.
type OutputFlags struct {
	Format string
}

// Register adds --output-format to cmd.
func (f *OutputFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Format, "output-format", "o", FormatText, "Output format: text, json or yaml")
}

// Validate rejects unknown formats before any work is done.
func (f *OutputFlags) Validate() error {
	switch f.Format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (use text, json or yaml)", f.Format)
}

// Write prints v as JSON or YAML, or with text for the text format.
func (f *OutputFlags) Write(w io.Writer, v any, text func(io.Writer) error) error {
	switch f.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return text(w)
	}
	return f.Validate()
}
