package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/common/errors"
)

const questionnaireYAML = `
id: default
questions:
  - id: q1
    order: 1
    text: Résidez-vous au Luxembourg ?
    answer_key: q_residence_lux
    answer_type: boolean
    options:
      opt_oui: Oui
      opt_non: Non
    branch_map:
      opt_non: END
  - id: q2
    order: 2
    text: Quel âge avez-vous ?
    answer_key: q_age
    answer_type: number
    display_condition: q_residence_lux = opt_oui
rules:
  - id: r_adult
    title: Aide adulte
    condition: q_age >= 18
    category: eligible
    message: Vous êtes majeur.
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileRepository_SameFile(t *testing.T) {
	path := writeFile(t, "questionnaire.yaml", questionnaireYAML)
	repo := NewFileRepository(path, path)

	questions, err := repo.LoadQuestions(context.Background(), "ignored")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "q_residence_lux", questions[0].AnswerKey)
	assert.Equal(t, "END", questions[0].BranchMap["opt_non"])
	assert.Equal(t, "q_residence_lux = opt_oui", questions[1].DisplayCondition)

	rules, err := repo.LoadRules(context.Background(), "ignored")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "eligible", rules[0].Category)
}

func TestFileRepository_SeparateFiles(t *testing.T) {
	questions := writeFile(t, "questions.yaml", "questions:\n  - id: q1\n    order: 1\n    answer_key: k\n    answer_type: number\n")
	rules := writeFile(t, "rules.yaml", "rules:\n  - id: r1\n    condition: k > 1\n    category: maybe\n")
	repo := NewFileRepository(questions, rules)

	q, err := repo.LoadQuestions(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, q, 1)

	r, err := repo.LoadRules(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, r, 1)
	assert.Equal(t, "maybe", r[0].Category)
}

func TestReadQuestionnaire_Errors(t *testing.T) {
	_, err := ReadQuestionnaire(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreConnectionFailed))

	misspelt := writeFile(t, "bad.yaml", "questions:\n  - id: q1\n    display_conditon: x = 1\n")
	_, err = ReadQuestionnaire(misspelt)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))
}
