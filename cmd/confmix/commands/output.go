package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/openfroyo/confmix/pkg/diag"
	"gopkg.in/yaml.v3"
)

// printResult writes v as JSON when --json is set, YAML otherwise.
func printResult(w io.Writer, v interface{}) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printErrors writes one line per record with its trail joined by ": ".
func printErrors(w io.Writer, errs diag.List) {
	for _, e := range errs {
		fmt.Fprintln(w, formatError(e))
	}
}

func formatError(e *diag.Error) string {
	return strings.Join(e.Trail, ": ")
}

// report prints errs and returns ErrFailed when there are any.
func report(w io.Writer, errs diag.List) error {
	if len(errs) == 0 {
		return nil
	}
	printErrors(w, errs)
	return ErrFailed
}
