package submitanswer

import (
	"aid-eligibility-workers/internal/engine/catalog"
	"aid-eligibility-workers/internal/engine/navigator"
)

type Input struct {
	Interview   *navigator.State `json:"interview"`
	AnswerKey   string           `json:"answerKey"`
	AnswerValue interface{}      `json:"answerValue"`
}

type Output struct {
	Interview         *navigator.State    `json:"interview"`
	CurrentQuestion   *catalog.Question   `json:"currentQuestion"`
	InterviewComplete bool                `json:"interviewComplete"`
	Progress          int                 `json:"progress"`
	TerminationReason string              `json:"terminationReason,omitempty"`
	TerminatedBy      string              `json:"terminatedBy,omitempty"`
	Warnings          []navigator.Warning `json:"navigationWarnings,omitempty"`
}
