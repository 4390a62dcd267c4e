package pipeline

import (
	"testing"

	"github.com/dentalforms/formspec/internal/schema"
)

func fieldWithLine(key string, line int) schema.Field {
	return schema.Field{Key: key, Title: key, Type: schema.FieldTypeInput, Line: line}
}

func TestOrderFieldsReferenceLayout(t *testing.T) {
	// Document order differs from the canonical layout; majority overlap
	// triggers the reference ordering
	fields := []schema.Field{
		fieldWithLine("first_name", 3),
		fieldWithLine("todays_date", 5),
		fieldWithLine("mi", 4),
		fieldWithLine("custom_question", 1),
	}

	ordered := DefaultTables().OrderFields(fields)
	want := []string{"todays_date", "first_name", "mi", "custom_question"}
	for i, key := range want {
		if ordered[i].Key != key {
			t.Fatalf("position %d = %q, want %q (full: %v)", i, ordered[i].Key, key, keysOf(ordered))
		}
	}
}

func TestOrderFieldsDocumentOrderWithSignaturesLast(t *testing.T) {
	sig := schema.Field{Key: "sig_here", Title: "Signature", Type: schema.FieldTypeSignature, Line: 1}
	fields := []schema.Field{
		sig,
		fieldWithLine("question_a", 2),
		fieldWithLine("question_b", 3),
	}

	ordered := DefaultTables().OrderFields(fields)
	want := []string{"question_a", "question_b", "sig_here"}
	for i, key := range want {
		if ordered[i].Key != key {
			t.Fatalf("position %d = %q, want %q", i, ordered[i].Key, key)
		}
	}
}

func TestDedupFields(t *testing.T) {
	fields := []schema.Field{
		fieldWithLine("a", 1),
		fieldWithLine("b", 2),
		fieldWithLine("a", 3),
	}
	out := DedupFields(fields)
	if len(out) != 2 || out[0].Key != "a" || out[1].Key != "b" {
		t.Errorf("unexpected dedup result: %v", keysOf(out))
	}
}

func keysOf(fields []schema.Field) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}
