// Package enginetest provides a small residence/age/income questionnaire for tests of
// packages built on the engine.
package enginetest

import (
	"encoding/json"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/models"
)

var yesNo = map[string]string{"opt_oui": "Oui", "opt_non": "Non"}

// Questions: residence (non-residents end), age, institution (adults only), income.
func Questions() []models.QuestionRecord {
	return []models.QuestionRecord{
		{ID: "q1", Order: 1, Text: "Résidez-vous au Luxembourg ?", AnswerKey: "q_residence_lux",
			AnswerType: "boolean", Options: yesNo, BranchMap: map[string]string{"opt_oui": "q2", "opt_non": "END"}},
		{ID: "q2", Order: 2, Text: "Quel âge avez-vous ?", AnswerKey: "q_age", AnswerType: "number"},
		{ID: "q3", Order: 3, Text: "Vivez-vous en institution ?", AnswerKey: "q_institution",
			AnswerType: "boolean", Options: yesNo, DisplayCondition: "q_age >= 18"},
		{ID: "q4", Order: 4, Text: "Revenus mensuels ?", AnswerKey: "q_revenus_mensuels", AnswerType: "number"},
	}
}

func Rules() []models.RuleRecord {
	return []models.RuleRecord{
		{ID: "r_housing", Title: "Aide au logement", Category: "eligible",
			Condition: "q_residence_lux = opt_oui AND q_age >= 18 AND q_institution = opt_non AND q_revenus_mensuels <= 3000",
			Message:   "Vous pouvez demander l'aide au logement.", FormURL: "https://example.org/logement"},
		{ID: "r_heating", Title: "Allocation de vie chère", Category: "maybe",
			Condition: "q_residence_lux = opt_oui AND q_revenus_mensuels < 2000"},
		{ID: "r_abroad", Title: "Aides hors Luxembourg", Category: "ineligible",
			Condition: "q_residence_lux = opt_non"},
	}
}

// New builds an engine over Questions and Rules with the default policy.
func New(t testing.TB, opts ...engine.Option) *engine.Engine {
	t.Helper()
	opts = append([]engine.Option{engine.WithLogger(logger.NewTestLogger(t))}, opts...)
	e, err := engine.New(Questions(), Rules(), opts...)
	require.NoError(t, err)
	return e
}

// Job builds an activated job carrying variables.
func Job(t testing.TB, taskType string, variables map[string]interface{}) entities.Job {
	t.Helper()
	raw, err := json.Marshal(variables)
	require.NoError(t, err)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                1,
		Type:               taskType,
		ProcessInstanceKey: 10,
		BpmnProcessId:      "aid-eligibility",
		ElementId:          "Activity_" + taskType,
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(raw),
	}}
}
