package domain

import (
	"encoding/json"
	"fmt"
)

// ParsePresets decodes a JSON array of impact requests. Each entry goes
// through the same presence and range checks as a submitted request.
func ParsePresets(data []byte) ([]ImpactRequest, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	reqs := make([]ImpactRequest, 0, len(raws))
	for i, raw := range raws {
		req, err := ParseImpactRequest(RawEvent{Value: raw})
		if err != nil {
			return nil, fmt.Errorf("preset %d: %w", i, err)
		}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", req.Name, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
