// Package config loads schema, layer and stack documents from disk.
//
// The format is chosen by file extension:
//
//	.yaml, .yml   YAML
//	.json         JSON, integral numbers decode as int64
//	.cue          CUE, the evaluated value must be concrete
//	.star         Starlark, public non-function globals form the document
//
// Parsed documents are cached per absolute path. Watch invalidates entries
// as files change on disk and notifies the caller after a short quiet
// period.
//
// Starlark documents run without print output and are cancelled after
// DefaultStarlarkTimeout unless WithStarlarkTimeout says otherwise:
//
//	loader := config.NewLoader(config.WithStarlarkTimeout(5 * time.Second))
//	stack, err := loader.LoadStack(ctx, "stack.star")
package config
