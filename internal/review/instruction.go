package review

import (
	"encoding/json"
	"strings"

	"github.com/bandready/ielts-backend/internal/model"
)

// InstructionPayload is the legacy JSON shape occasionally embedded in a
// question group's instruction field: a display text plus an option list and
// a key-taxonomy hint for rendering.
type InstructionPayload struct {
	Text    string         `json:"text"`
	Options []model.Option `json:"options"`
	KeyType KeyType        `json:"key_type"`
}

// ParseInstruction attempts to decode a legacy JSON instruction payload.
// Returns (nil, false) when the instruction is plain text or the payload is
// malformed; callers fall back to using the instruction verbatim.
func ParseInstruction(instruction string) (*InstructionPayload, bool) {
	trimmed := strings.TrimSpace(instruction)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var p InstructionPayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// looksLikeInstructionPayload reports whether the instruction was meant to be
// a JSON payload, parseable or not. Used for the one-time malformed-payload
// warning.
func looksLikeInstructionPayload(instruction string) bool {
	return strings.HasPrefix(strings.TrimSpace(instruction), "{")
}

// GroupOptions returns the group's option list merged with any options
// carried by a legacy instruction payload. Nil-safe.
func GroupOptions(g *model.QuestionGroup) []model.Option {
	if g == nil {
		return nil
	}
	p, ok := ParseInstruction(g.Instruction)
	if !ok || len(p.Options) == 0 {
		return g.Options
	}
	merged := make([]model.Option, 0, len(g.Options)+len(p.Options))
	merged = append(merged, g.Options...)
	merged = append(merged, p.Options...)
	return merged
}
