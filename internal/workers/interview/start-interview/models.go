package startinterview

import (
	"aid-eligibility-workers/internal/engine/catalog"
	"aid-eligibility-workers/internal/engine/navigator"
)

type Input struct {
	SessionID string `json:"sessionId,omitempty"`
}

type Output struct {
	Interview         *navigator.State  `json:"interview"`
	CurrentQuestion   *catalog.Question `json:"currentQuestion"`
	InterviewComplete bool              `json:"interviewComplete"`
	Progress          int               `json:"progress"`
}
