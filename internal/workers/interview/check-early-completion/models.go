package checkearlycompletion

import (
	"aid-eligibility-workers/internal/engine/navigator"
	"aid-eligibility-workers/internal/models"
)

// Input carries the answers directly or inside the interview state.
type Input struct {
	Answers   models.AnswerSet `json:"answers,omitempty"`
	Interview *navigator.State `json:"interview,omitempty"`
}

func (in *Input) answerSet() (models.AnswerSet, bool) {
	if in.Answers != nil {
		return in.Answers, true
	}
	if in.Interview != nil {
		if in.Interview.Answers == nil {
			return models.AnswerSet{}, true
		}
		return in.Interview.Answers, true
	}
	return nil, false
}

type Output struct {
	CanCompleteNow bool     `json:"canCompleteNow"`
	TerminatedBy   string   `json:"terminatedBy,omitempty"`
	MissingKeys    []string `json:"missingKeys"`
}
