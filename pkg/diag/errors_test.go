package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	e := New(ClassValue, "node", "params.tier", "value not in choices")
	want := "[value] node: params.tier: value not in choices"
	if got := e.Error(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	e = New(ClassInternal, "boom").WithCause(fmt.Errorf("nil map"))
	want = "[internal] boom: nil map"
	if got := e.Error(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNew_CopiesTrail(t *testing.T) {
	trail := []string{"a", "b"}
	e := New(ClassParam, trail...)
	trail[0] = "changed"
	if e.Trail[0] != "a" {
		t.Errorf("trail aliased caller slice: %v", e.Trail)
	}
}

func TestError_Within(t *testing.T) {
	e := New(ClassParam, "group_params", "env", "unknown key")
	wrapped := e.Within("web")

	if len(wrapped.Trail) != 4 || wrapped.Trail[0] != "web" {
		t.Errorf("unexpected trail: %v", wrapped.Trail)
	}
	if len(e.Trail) != 3 {
		t.Errorf("original record modified: %v", e.Trail)
	}
	if wrapped.Message() != "unknown key" {
		t.Errorf("expected message to be preserved, got %q", wrapped.Message())
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize("params", nil); got != nil {
		t.Errorf("expected nil for empty list, got %v", got)
	}

	l := List{
		New(ClassParam, "group_params", "a", "missing"),
		New(ClassParam, "shared_params", "b", "missing"),
	}
	got := Summarize("parameter resolution failed", l)

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Class != ClassSummary {
		t.Errorf("expected summary record first, got %s", got[0].Class)
	}
	if got[0].Message() != "2 error(s)" {
		t.Errorf("unexpected summary message: %q", got[0].Message())
	}
	if got[1] != l[0] || got[2] != l[1] {
		t.Error("underlying records must be preserved unchanged")
	}
}

func TestList_Err(t *testing.T) {
	var empty List
	if empty.Err() != nil {
		t.Error("expected nil error for empty list")
	}

	l := List{New(ClassDependency, "web", "instance 1", "db", "insufficient hosts")}
	err := l.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsClass(err, ClassDependency) {
		t.Error("expected errors.As to reach the dependency record")
	}
	if !errors.Is(err, &Error{Class: ClassDependency}) {
		t.Error("expected errors.Is to match by class")
	}
	if IsClass(err, ClassSchema) {
		t.Error("did not expect schema class")
	}
}

func TestList_CountAndTrails(t *testing.T) {
	l := List{
		New(ClassSchema, "s", "(root)", "bad"),
		New(ClassValue, "s", "a", "bad"),
		New(ClassValue, "s", "b", "bad"),
	}
	if l.Count(ClassValue) != 2 {
		t.Errorf("expected 2 value errors, got %d", l.Count(ClassValue))
	}
	trails := l.Trails()
	trails[0][0] = "mutated"
	if l[0].Trail[0] != "s" {
		t.Error("Trails must return copies")
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("index out of range")
	e := Internal([]string{"schema"}, cause, []byte("goroutine 1"))
	if e.Class != ClassInternal {
		t.Errorf("expected internal class, got %s", e.Class)
	}
	if e.Stack != "goroutine 1" {
		t.Errorf("expected stack to be captured, got %q", e.Stack)
	}
	if !errors.Is(e, cause) {
		t.Error("expected cause to be unwrappable")
	}
}
