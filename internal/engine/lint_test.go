package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/engine/navigator"
	"aid-eligibility-workers/internal/models"
)

func TestLint_CleanQuestionnaire(t *testing.T) {
	e := newEngine(t)
	assert.Empty(t, e.Lint())
}

func TestLint_Findings(t *testing.T) {
	questions := questionRecords()
	questions[0].BranchMap = map[string]string{"opt_oui": "q2", "opt_peut_etre": "q3", "opt_non": "q_gone"}
	questions[3].DisplayCondition = "q_nationalite_cat = opt_Z"

	ruleRecs := []models.RuleRecord{
		{ID: "r_syntax", Category: "eligible", Condition: "(q_age >= 18"},
		{ID: "r_unknown", Category: "eligible", Condition: "q_pension = opt_oui"},
		{ID: "r_numeric_on_enum", Category: "maybe", Condition: "q_residence_lux > 1"},
		{ID: "r_non_numeric", Category: "maybe", Condition: "q_age >= adult"},
		{ID: "r_garbage", Category: "ineligible", Condition: "q_age = 1 OR whatever this is"},
		{ID: "r_in", Category: "eligible", Condition: "q_nationalite_cat IN {opt_A,opt_X}"},
	}

	e, err := New(questions, ruleRecs, WithPolicy(navigator.NewPolicy(
		navigator.Predicate{Name: "typo", Condition: "q_residence = opt_non"},
	)))
	require.NoError(t, err)

	type finding struct{ source, id, field string }
	got := map[finding]int{}
	for _, issue := range e.Lint() {
		got[finding{issue.Source, issue.ID, issue.Field}]++
		assert.NotEmpty(t, issue.Message)
		assert.Contains(t, issue.String(), issue.ID)
	}

	assert.Equal(t, map[finding]int{
		{"question", "q1", "branch_map"}:           2, // opt_peut_etre is no option, q_gone does not exist
		{"question", "q4", "display_condition"}:    1,
		{"rule", "r_syntax", "condition"}:          1,
		{"rule", "r_unknown", "condition"}:         1,
		{"rule", "r_numeric_on_enum", "condition"}: 1,
		{"rule", "r_non_numeric", "condition"}:     1,
		{"rule", "r_garbage", "condition"}:         1,
		{"rule", "r_in", "condition"}:              1,
		{"policy", "typo", "condition"}:            1,
	}, got)
}
