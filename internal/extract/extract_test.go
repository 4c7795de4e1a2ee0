package extract

import (
	"errors"
	"testing"

	"cataloger/internal/domain"
)

func TestObjectStripsFencesAndProse(t *testing.T) {
	raw := "Sure! Here is the JSON you asked for:\n```json\n{\"name\": \"Breakfast\", \"order\": 1}\n```\nLet me know if you need anything else."
	obj, err := Object(raw)
	if err != nil {
		t.Fatalf("Object returned error: %v", err)
	}
	if obj["name"] != "Breakfast" {
		t.Fatalf("name = %v, want Breakfast", obj["name"])
	}
}

func TestArrayUsesOutermostBrackets(t *testing.T) {
	raw := "prose [1] more prose [\"a\", [\"nested\"], \"b\"]"
	// First '[' to last ']' spans an invalid region here on purpose: the
	// heuristic slices once, it does not search for the best candidate.
	if _, err := Array(raw); err == nil {
		t.Fatal("expected error for non-JSON outer slice")
	}

	clean := "Here you go:\n[\"Starters\", \"Mains\", \"Desserts\"]"
	names, err := StringArray(clean)
	if err != nil {
		t.Fatalf("StringArray returned error: %v", err)
	}
	if len(names) != 3 || names[0] != "Starters" || names[2] != "Desserts" {
		t.Fatalf("unexpected names: %#v", names)
	}
}

func TestFragmentMissingDelimiters(t *testing.T) {
	_, err := Fragment("no json here at all", ShapeObject)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	_, err = Fragment("{\"object\": true}", ShapeArray)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse for wrong shape", err)
	}
}

func TestFragmentInvalidJSON(t *testing.T) {
	_, err := Fragment("{not valid json}", ShapeObject)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestDecodeTopLevelTypeMismatch(t *testing.T) {
	// Valid array between the braces of the requested object shape does not
	// exist, so the object request must fail even though the text holds JSON.
	_, err := Object("[1, 2, 3]")
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestObjectWithArrayField(t *testing.T) {
	ok := `{"services": [{"name": "Lunch"}]}`
	if _, err := ObjectWithArrayField(ok, "services"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := `{"items": []}`
	_, err := ObjectWithArrayField(missing, "services")
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}

	wrongType := `{"services": {"name": "Lunch"}}`
	_, err = ObjectWithArrayField(wrongType, "services")
	if !errors.Is(err, domain.ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestStringArrayRejectsMixedElements(t *testing.T) {
	if _, err := StringArray(`["a", 2]`); !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
