package tool

import (
	"encoding/json"
	"fmt"
)

// Normalize flattens an outcome into the external response text. Success
// payloads serialize as pretty-printed JSON with two-space indentation and
// deterministic key order; every failure kind collapses to its message,
// reported to the caller as a single invalid-parameters error class.
func Normalize(outcome Outcome) (text string, ok bool) {
	if !outcome.OK() {
		return outcome.Message, false
	}
	return renderPayload(outcome.Payload), true
}

func renderPayload(payload map[string]any) string {
	if payload == nil {
		return "null"
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Payloads are built from plain maps and slices; this path is
		// unreachable in practice but must not drop the result silently.
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}
