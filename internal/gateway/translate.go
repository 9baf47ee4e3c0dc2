package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// maxRawErrorLen bounds how much of an unparseable gateway error body
// may reach the caller.
const maxRawErrorLen = 200

type errorDetail struct {
	Description string `json:"description"`
}

type errorPayload struct {
	Name    string        `json:"name"`
	Message string        `json:"message"`
	Details []errorDetail `json:"details"`
}

// translateError converts a raw gateway error body into a short,
// user-safe message. It prefers details[0].description, then message,
// then "Gateway: "+name; anything unparseable is passed through
// truncated. Stack traces and full payloads never cross this boundary.
func translateError(op string, statusCode int, body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Sprintf("%s failed: %d", op, statusCode)
	}

	var p errorPayload
	if err := json.Unmarshal(body, &p); err == nil {
		if len(p.Details) > 0 && p.Details[0].Description != "" {
			return p.Details[0].Description
		}
		if p.Message != "" {
			return p.Message
		}
		if p.Name != "" {
			return "Gateway: " + p.Name
		}
	}

	if raw := []rune(string(body)); len(raw) > maxRawErrorLen {
		return string(raw[:maxRawErrorLen]) + "..."
	}
	return string(body)
}
