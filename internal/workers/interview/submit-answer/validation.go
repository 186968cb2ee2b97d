package submitanswer

import "aid-eligibility-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"interview", "answerKey", "answerValue"},
		Properties: map[string]validation.Property{
			"interview": {
				Type:        "object",
				Description: "Navigation state returned by the previous interview job",
				Required:    []string{"sessionId", "status"},
				Properties: map[string]validation.Property{
					"sessionId": {Type: "string", MinLength: validation.IntPtr(1)},
					"status":    {Type: "string", Enum: []string{"AWAITING_ANSWER", "COMPLETE"}},
					"answers":   {Type: "object"},
					"visited":   {Type: "array", Items: &validation.Property{Type: "string"}},
				},
			},
			"answerKey": {
				Type:        "string",
				Description: "Answer key of the question being answered",
				MinLength:   validation.IntPtr(1),
			},
			"answerValue": {
				Description: "Option code or number",
			},
		},
	}
}
