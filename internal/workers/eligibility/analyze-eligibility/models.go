package analyzeeligibility

import (
	"aid-eligibility-workers/internal/engine/navigator"
	"aid-eligibility-workers/internal/engine/rules"
	"aid-eligibility-workers/internal/models"
)

type Input struct {
	Answers   models.AnswerSet `json:"answers,omitempty"`
	Interview *navigator.State `json:"interview,omitempty"`
}

func (in *Input) answerSet() (models.AnswerSet, bool) {
	switch {
	case in.Answers != nil:
		return in.Answers, true
	case in.Interview == nil:
		return nil, false
	case in.Interview.Answers == nil:
		return models.AnswerSet{}, true
	default:
		return in.Interview.Answers, true
	}
}

type Output struct {
	EligibilityResults []rules.Result `json:"eligibilityResults"`
	EligibilitySummary rules.Summary  `json:"eligibilitySummary"`
	HasEligibleAid     bool           `json:"hasEligibleAid"`
	AnswersComplete    bool           `json:"answersComplete"`
}
