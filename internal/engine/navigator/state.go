package navigator

import (
	"aid-eligibility-workers/internal/models"
)

type Status string

const (
	StatusAwaitingAnswer Status = "AWAITING_ANSWER"
	StatusComplete       Status = "COMPLETE"
)

// Termination reasons, also used as transition outcomes.
const (
	OutcomeNext            = "next"
	ReasonEarlyTermination = "early_termination"
	ReasonBranchEnd        = "branch_end"
	ReasonCatalogExhausted = "catalog_exhausted"
	ReasonDanglingBranch   = "dangling_branch"
	ReasonBranchCycle      = "branch_cycle"
)

// Warning codes.
const (
	WarningDanglingBranch = "DANGLING_BRANCH"
	WarningBranchCycle    = "BRANCH_CYCLE"
)

// Warning is a recovered navigation problem. The interview completes instead of failing.
type Warning struct {
	Code       string `json:"code"`
	QuestionID string `json:"questionId"`
	Target     string `json:"target,omitempty"`
	Message    string `json:"message"`
}

// State is one interview session. It is serialisable and travels between jobs as a
// process variable.
type State struct {
	SessionID         string           `json:"sessionId"`
	CurrentQuestionID string           `json:"currentQuestionId,omitempty"`
	Answers           models.AnswerSet `json:"answers"`
	Visited           []string         `json:"visited"`
	Status            Status           `json:"status"`
	Terminal          bool             `json:"terminal"`
	Progress          int              `json:"progress"`
	TerminationReason string           `json:"terminationReason,omitempty"`
	TerminatedBy      string           `json:"terminatedBy,omitempty"`
	Warnings          []Warning        `json:"warnings,omitempty"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := *s
	out.Answers = s.Answers.Clone()
	out.Visited = append([]string{}, s.Visited...)
	if s.Warnings != nil {
		out.Warnings = append([]Warning{}, s.Warnings...)
	}
	return &out
}

// IsComplete reports whether the interview has ended.
func (s *State) IsComplete() bool {
	return s.Status == StatusComplete
}

func (s *State) visitedIndex(id string) int {
	for i, v := range s.Visited {
		if v == id {
			return i
		}
	}
	return -1
}
