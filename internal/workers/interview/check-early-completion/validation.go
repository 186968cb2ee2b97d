package checkearlycompletion

import "aid-eligibility-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"answers": {
				Type:        "object",
				Description: "Answer key to option code or number",
			},
			"interview": {
				Type:        "object",
				Description: "Navigation state; its answers are used when answers is absent",
				Properties: map[string]validation.Property{
					"answers": {Type: "object"},
				},
			},
		},
	}
}
