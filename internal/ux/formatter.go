package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Formatter renders a command result.
type Formatter interface {
	Format(data interface{}) error
}

// Formats lists the values NewFormatter accepts.
var Formats = []string{"text", "json", "yaml"}

// NewFormatter returns the formatter for format, writing to w. A nil w
// means stdout and an empty format means text.
func NewFormatter(format string, w io.Writer) (Formatter, error) {
	if w == nil {
		w = os.Stdout
	}
	switch format {
	case "text", "":
		return textFormatter{w}, nil
	case "json":
		return jsonFormatter{w}, nil
	case "yaml":
		return yamlFormatter{w}, nil
	}
	return nil, fmt.Errorf("unknown format %q (supported: %v)", format, Formats)
}

type jsonFormatter struct{ w io.Writer }

func (f jsonFormatter) Format(data interface{}) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

type yamlFormatter struct{ w io.Writer }

func (f yamlFormatter) Format(data interface{}) error {
	enc := yaml.NewEncoder(f.w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// textFormatter prints one line per slice element. Structured values have
// no text form; callers print those themselves.
type textFormatter struct{ w io.Writer }

func (f textFormatter) Format(data interface{}) error {
	var lines []string
	switch v := data.(type) {
	case string:
		lines = []string{v}
	case []string:
		lines = v
	case fmt.Stringer:
		lines = []string{v.String()}
	default:
		return fmt.Errorf("text output cannot render %T", data)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.w, line); err != nil {
			return err
		}
	}
	return nil
}
