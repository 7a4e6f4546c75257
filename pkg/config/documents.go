package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/openfroyo/confmix/pkg/diag"
	"github.com/openfroyo/confmix/pkg/engine"
	"github.com/openfroyo/confmix/pkg/params"
	"github.com/openfroyo/confmix/pkg/schema"
)

// LoadSchema loads a schema document, checks it against the meta-schema and
// decodes it. Problems with the document itself are returned as records; the
// error reports I/O and parse failures.
func (l *Loader) LoadSchema(ctx context.Context, path string) (*schema.Document, diag.List, error) {
	raw, err := l.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	doc, errs := schema.Compile(raw)
	return doc, errs, nil
}

// LoadStack loads and decodes a stack document.
func (l *Loader) LoadStack(ctx context.Context, path string) (*engine.Stack, error) {
	var stack engine.Stack
	if err := l.decode(ctx, path, &stack); err != nil {
		return nil, err
	}
	return &stack, nil
}

// LoadLayers loads and decodes a parameter layers document.
func (l *Loader) LoadLayers(ctx context.Context, path string) (params.Layers, error) {
	var layers params.Layers
	if err := l.decode(ctx, path, &layers); err != nil {
		return params.Layers{}, err
	}
	return layers, nil
}

func (l *Loader) decode(ctx context.Context, path string, out interface{}) error {
	raw, err := l.Load(ctx, path)
	if err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
