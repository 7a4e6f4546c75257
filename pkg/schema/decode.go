package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode builds a Document from a raw value tree. Unknown fields are
// rejected.
func Decode(raw interface{}) (*Document, error) {
	var doc Document
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema document: %w", err)
	}
	return &doc, nil
}

// DecodeDefinition builds a single Definition from a raw value tree.
func DecodeDefinition(raw interface{}) (*Definition, error) {
	var def Definition
	if err := decodeStrict(raw, &def); err != nil {
		return nil, fmt.Errorf("failed to decode schema definition: %w", err)
	}
	return &def, nil
}

func decodeStrict(raw, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
