package tool

import "testing"

func TestNormalizeSuccessIndentsWithStableKeyOrder(t *testing.T) {
	outcome := successOutcome(map[string]any{
		"zeta":  1,
		"alpha": "x",
	})

	text, ok := Normalize(outcome)
	if !ok {
		t.Fatal("Normalize reported failure for success outcome")
	}
	want := "{\n  \"alpha\": \"x\",\n  \"zeta\": 1\n}"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestNormalizeSameValueSerializesIdentically(t *testing.T) {
	payload := map[string]any{
		"items": []any{map[string]any{"b": 2, "a": 1}},
		"total": 1,
	}

	first, _ := Normalize(successOutcome(payload))
	second, _ := Normalize(successOutcome(payload))
	if first != second {
		t.Fatalf("serialization not deterministic:\n%s\nvs\n%s", first, second)
	}
}

func TestNormalizeFailureReturnsMessageOnly(t *testing.T) {
	for _, outcome := range []Outcome{
		validationError("Unknown tool: nope"),
		domainError("File not found: /missing"),
		faultOutcome("An unexpected server error occurred: boom"),
	} {
		text, ok := Normalize(outcome)
		if ok {
			t.Fatalf("Normalize(%q) reported success", outcome.Kind)
		}
		if text != outcome.Message {
			t.Fatalf("text = %q, want %q", text, outcome.Message)
		}
	}
}
