package startinterview

import "aid-eligibility-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Session id to reuse; generated when absent",
				MaxLength:   validation.IntPtr(128),
			},
		},
	}
}
