package diag

import (
	"errors"
	"testing"
)

type listener struct {
	Name  string `yaml:"name" validate:"required"`
	Port  int    `yaml:"port,omitempty" validate:"gte=1,lte=65535"`
	Proto string `yaml:"proto" validate:"omitempty,oneof=tcp udp"`
}

func TestFromValidation(t *testing.T) {
	v := NewValidator()

	t.Run("nil error", func(t *testing.T) {
		if errs := FromValidation(ClassValue, v.Struct(listener{Name: "a", Port: 80})); errs != nil {
			t.Errorf("expected nil, got %v", errs)
		}
	})

	t.Run("field errors named by yaml tag", func(t *testing.T) {
		errs := FromValidation(ClassDependency, v.Struct(listener{Port: 0, Proto: "icmp"}))
		want := []string{
			"invalid name: failed 'required' check",
			"invalid port: failed 'gte=1' check",
			"invalid proto: failed 'oneof=tcp udp' check",
		}
		if len(errs) != len(want) {
			t.Fatalf("expected %d errors, got %v", len(want), errs)
		}
		for i, e := range errs {
			if e.Class != ClassDependency {
				t.Errorf("expected class dependency, got %s", e.Class)
			}
			if e.Message() != want[i] {
				t.Errorf("expected %q, got %q", want[i], e.Message())
			}
		}
	})

	t.Run("other errors", func(t *testing.T) {
		cause := errors.New("not a struct")
		errs := FromValidation(ClassSchema, cause)
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %v", errs)
		}
		if errs[0].Message() != "invalid definition: not a struct" {
			t.Errorf("unexpected message %q", errs[0].Message())
		}
		if !errors.Is(errs[0], cause) {
			t.Error("expected the cause to be kept")
		}
	})
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		candidates []string
		want       string
	}{
		{name: "close match", input: "prot", candidates: []string{"port", "name"}, want: "port"},
		{name: "too far", input: "xyz", candidates: []string{"port"}, want: ""},
		{name: "exact match skipped", input: "port", candidates: []string{"port"}, want: ""},
		{name: "tie picks smallest", input: "ab", candidates: []string{"ac", "aa"}, want: "aa"},
		{name: "short input", input: "a", candidates: []string{"b"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suggest(tt.input, tt.candidates); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if got := DidYouMean("prot", []string{"port"}); got != " (did you mean 'port'?)" {
		t.Errorf("unexpected hint %q", got)
	}
}
