package previousquestion

import "aid-eligibility-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"interview"},
		Properties: map[string]validation.Property{
			"interview": {
				Type:     "object",
				Required: []string{"sessionId", "status"},
				Properties: map[string]validation.Property{
					"sessionId": {Type: "string", MinLength: validation.IntPtr(1)},
					"status":    {Type: "string", Enum: []string{"AWAITING_ANSWER", "COMPLETE"}},
					"visited":   {Type: "array", Items: &validation.Property{Type: "string"}},
				},
			},
		},
	}
}
