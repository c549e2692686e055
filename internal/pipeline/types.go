package pipeline

import "time"

// UnmatchedLine is a raw log line that the matcher returned no
// template for (§4.6), queued up for the generation pipeline.
type UnmatchedLine struct {
	Line       []byte
	EnqueuedAt time.Time
}

// GenerationRequest is the request body sent to the external template
// generator (§6): instructions plus a batch of representative lines.
type GenerationRequest struct {
	Instructions string   `json:"instructions"`
	Examples     []string `json:"examples,omitempty"`
	LogLines     []string `json:"log_lines"`
}

// GeneratedTemplate is one element of the generator's reply (§6):
// { pattern, fragments?, variables?, example }. Fragments is optional —
// when the generator omits it, the validator derives fragments from
// Pattern by splitting on placeholder syntax (§4.7 Validation step a).
type GeneratedTemplate struct {
	Pattern   string   `json:"pattern"`
	Fragments []string `json:"fragments,omitempty"`
	Variables []string `json:"variables,omitempty"`
	Example   string   `json:"example"`
}

// GenerationResponse is the generator's reply body: one GeneratedTemplate
// per line in the request, in the same order.
type GenerationResponse struct {
	Templates []GeneratedTemplate `json:"templates"`
}
