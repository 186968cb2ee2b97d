package previousquestion

import (
	"aid-eligibility-workers/internal/engine/catalog"
	"aid-eligibility-workers/internal/engine/navigator"
)

type Input struct {
	Interview *navigator.State `json:"interview"`
}

type Output struct {
	Interview         *navigator.State  `json:"interview"`
	CurrentQuestion   *catalog.Question `json:"currentQuestion"`
	InterviewComplete bool              `json:"interviewComplete"`
	Progress          int               `json:"progress"`
}
