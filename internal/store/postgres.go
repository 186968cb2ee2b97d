package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/models"
)

const (
	questionsQuery = `
		SELECT id, sort_order, question_text, answer_key, answer_type,
		       options, branch_map, COALESCE(display_condition, '')
		FROM questions
		WHERE questionnaire_id = $1
		ORDER BY sort_order`

	rulesQuery = `
		SELECT id, title, condition, category, message,
		       COALESCE(form_url, ''), COALESCE(info_url, ''), COALESCE(action_label, '')
		FROM conclusions
		WHERE questionnaire_id = $1
		ORDER BY sort_order`
)

// PostgresRepository reads the questions and conclusions tables. Options and branch
// maps are JSONB objects.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) LoadQuestions(ctx context.Context, questionnaire string) ([]models.QuestionRecord, error) {
	rows, err := r.db.QueryContext(ctx, questionsQuery, questionnaire)
	if err != nil {
		return nil, errors.NewStoreQueryFailedError("questions", err)
	}
	defer rows.Close()

	var out []models.QuestionRecord
	for rows.Next() {
		var (
			rec              models.QuestionRecord
			options, branchs []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Order, &rec.Text, &rec.AnswerKey, &rec.AnswerType,
			&options, &branchs, &rec.DisplayCondition); err != nil {
			return nil, errors.NewStoreQueryFailedError("questions", err)
		}
		if rec.Options, err = decodeStringMap(options); err != nil {
			return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid,
				fmt.Sprintf("question %s: options: %v", rec.ID, err))
		}
		if rec.BranchMap, err = decodeStringMap(branchs); err != nil {
			return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid,
				fmt.Sprintf("question %s: branch_map: %v", rec.ID, err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreQueryFailedError("questions", err)
	}
	return out, nil
}

func (r *PostgresRepository) LoadRules(ctx context.Context, questionnaire string) ([]models.RuleRecord, error) {
	rows, err := r.db.QueryContext(ctx, rulesQuery, questionnaire)
	if err != nil {
		return nil, errors.NewStoreQueryFailedError("conclusions", err)
	}
	defer rows.Close()

	var out []models.RuleRecord
	for rows.Next() {
		var rec models.RuleRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Condition, &rec.Category, &rec.Message,
			&rec.FormURL, &rec.InfoURL, &rec.ActionLabel); err != nil {
			return nil, errors.NewStoreQueryFailedError("conclusions", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreQueryFailedError("conclusions", err)
	}
	return out, nil
}

// decodeStringMap decodes a JSONB object. SQL NULL and JSON null give a nil map.
func decodeStringMap(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
