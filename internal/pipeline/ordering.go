package pipeline

import (
	"sort"

	"github.com/dentalforms/formspec/internal/schema"
)

// OrderFields sequences the spec. Specs that substantially match the
// comprehensive new-patient layout adopt its canonical order, with
// unrecognized fields appended in document order. Everything else keeps
// document order with signature fields moved to the end.
func (t *Tables) OrderFields(fields []schema.Field) []schema.Field {
	if t.referenceIndex == nil {
		t.buildReferenceIndex()
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Line < fields[j].Line
	})

	if t.shouldUseReferenceOrder(fields) {
		return t.applyReferenceOrder(fields)
	}
	return applyStandardOrder(fields)
}

// shouldUseReferenceOrder checks whether more than half the keys land in the
// reference layout
func (t *Tables) shouldUseReferenceOrder(fields []schema.Field) bool {
	if len(fields) == 0 {
		return false
	}
	overlap := 0
	for _, f := range fields {
		if _, ok := t.referenceIndex[f.Key]; ok {
			overlap++
		}
	}
	return overlap*2 > len(fields)
}

func (t *Tables) applyReferenceOrder(fields []schema.Field) []schema.Field {
	byKey := make(map[string]schema.Field, len(fields))
	for _, f := range fields {
		if _, dup := byKey[f.Key]; !dup {
			byKey[f.Key] = f
		}
	}

	ordered := make([]schema.Field, 0, len(fields))
	for _, key := range t.ReferenceOrder {
		if f, ok := byKey[key]; ok {
			ordered = append(ordered, f)
		}
	}
	for _, f := range fields {
		if _, ok := t.referenceIndex[f.Key]; !ok {
			ordered = append(ordered, f)
		}
	}
	return ordered
}

func applyStandardOrder(fields []schema.Field) []schema.Field {
	ordered := make([]schema.Field, 0, len(fields))
	var signatures []schema.Field
	for _, f := range fields {
		if f.Type == schema.FieldTypeSignature {
			signatures = append(signatures, f)
			continue
		}
		ordered = append(ordered, f)
	}
	return append(ordered, signatures...)
}

// DedupFields removes repeat detections of the same key, keeping the first.
// Keys are already globally unique by construction; this guards against a
// strategy emitting the same field twice for one line.
func DedupFields(fields []schema.Field) []schema.Field {
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if seen[f.Key] {
			continue
		}
		seen[f.Key] = true
		out = append(out, f)
	}
	return out
}
