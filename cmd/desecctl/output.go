package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/haukened/desec-go/pkg/desec"
)

// render writes v in the selected output format. Values are encoded as JSON
// first so both formats share the API field names.
func (a *app) render(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if a.output == "yaml" {
		data, err = yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
	} else {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

// readRRSets loads a list of RRsets from a YAML or JSON file, or from stdin
// when path is "-".
func readRRSets(path string, stdin io.Reader) ([]desec.RRSet, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// JSON is valid YAML, so one conversion handles both.
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var rrsets []desec.RRSet
	if err := json.Unmarshal(js, &rrsets); err != nil {
		return nil, fmt.Errorf("parse %s: expected a list of RRsets: %w", path, err)
	}
	return rrsets, nil
}
