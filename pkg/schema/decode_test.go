package schema

import (
	"testing"
)

func TestDecode(t *testing.T) {
	raw := map[string]interface{}{
		"root": "a",
		"schemas": map[string]interface{}{
			"a": map[string]interface{}{
				"type":     "list",
				"elem_min": 1,
				"elem_max": 2.5,
				"props":    map[string]interface{}{},
			},
		},
	}

	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	def, ok := doc.Lookup("a")
	if !ok {
		t.Fatal("expected definition 'a'")
	}
	if def.Type != TypeList {
		t.Errorf("expected type list, got %s", def.Type)
	}
	if def.ElemMin == nil || *def.ElemMin != 1 {
		t.Errorf("expected elem_min 1, got %v", def.ElemMin)
	}
	if def.ElemMax == nil || *def.ElemMax != 2.5 {
		t.Errorf("expected elem_max 2.5, got %v", def.ElemMax)
	}
	if def.Min != nil {
		t.Errorf("expected no min, got %v", *def.Min)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := DecodeDefinition(map[string]interface{}{"type": "str", "colour": "red"})
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLookupNilSafe(t *testing.T) {
	var doc *Document
	if _, ok := doc.Lookup("a"); ok {
		t.Error("expected lookup on nil document to fail")
	}

	doc = &Document{Schemas: map[string]*Definition{"a": nil}}
	if _, ok := doc.Lookup("a"); ok {
		t.Error("expected nil definition to be treated as missing")
	}
}
