// Package store reads questionnaire records (questions and eligibility rules) from
// the configuration store. Everything here is read-only.
package store

import (
	"context"

	"aid-eligibility-workers/internal/models"
)

// Repository delivers the records of one questionnaire in their configured order.
type Repository interface {
	LoadQuestions(ctx context.Context, questionnaire string) ([]models.QuestionRecord, error)
	LoadRules(ctx context.Context, questionnaire string) ([]models.RuleRecord, error)
}

// questionnaireSource is implemented by repositories that can return questions and
// rules from one consistent read.
type questionnaireSource interface {
	LoadQuestionnaire(ctx context.Context, questionnaire string) (*models.Questionnaire, error)
}
