package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/openfroyo/confmix/pkg/diag"
	"gopkg.in/yaml.v3"
)

// metaYAML is the bootstrap meta-schema describing schema documents.
//
//go:embed meta.yaml
var metaYAML []byte

var (
	metaOnce sync.Once
	metaDoc  *Document
)

// MetaSource returns a freshly parsed copy of the bootstrap meta-schema as a
// raw value tree.
func MetaSource() interface{} {
	var raw interface{}
	if err := yaml.Unmarshal(metaYAML, &raw); err != nil {
		panic(fmt.Sprintf("schema: embedded meta-schema is not valid YAML: %v", err))
	}
	return raw
}

// MetaYAML returns the bootstrap meta-schema source.
func MetaYAML() []byte {
	return append([]byte(nil), metaYAML...)
}

// MetaDocument returns the decoded bootstrap meta-schema. The returned
// document is shared and must not be modified.
func MetaDocument() *Document {
	metaOnce.Do(func() {
		doc, err := Decode(MetaSource())
		if err != nil {
			panic(fmt.Sprintf("schema: embedded meta-schema does not decode: %v", err))
		}
		metaDoc = doc
	})
	return metaDoc
}

// CheckDocument validates a raw schema document against the bootstrap
// meta-schema using the same algorithm as Validate.
func CheckDocument(raw interface{}) diag.List {
	return Validate(MetaDocument(), "", raw)
}

// Compile checks a raw schema document against the meta-schema, decodes it
// and verifies that its root names a definition.
func Compile(raw interface{}) (*Document, diag.List) {
	if errs := CheckDocument(raw); len(errs) > 0 {
		return nil, errs
	}

	doc, err := Decode(raw)
	if err != nil {
		return nil, diag.List{diag.New(diag.ClassSchema, "document", rootPath, err.Error()).WithCause(err)}
	}

	if _, ok := doc.Lookup(doc.Root); !ok {
		return nil, diag.List{diag.Newf(diag.ClassSchema, []string{"document", "root"},
			"root '%s' is not defined in schemas", doc.Root)}
	}

	return doc, nil
}
