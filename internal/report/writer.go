package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc Document, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFile encodes doc into the file at path, replacing it if it exists.
func WriteFile(path string, doc Document, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	if err := Encode(f, doc, format); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}

	return f.Close()
}
