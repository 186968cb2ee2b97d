package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/models"
)

// FileRepository reads questionnaire YAML files. Questions come from the
// `questions` list of one file and rules from the `rules` list of another; both
// may be the same file. The questionnaire argument is ignored.
type FileRepository struct {
	questionsFile string
	rulesFile     string
}

func NewFileRepository(questionsFile, rulesFile string) *FileRepository {
	return &FileRepository{questionsFile: questionsFile, rulesFile: rulesFile}
}

func (r *FileRepository) LoadQuestions(_ context.Context, _ string) ([]models.QuestionRecord, error) {
	q, err := ReadQuestionnaire(r.questionsFile)
	if err != nil {
		return nil, err
	}
	return q.Questions, nil
}

func (r *FileRepository) LoadRules(_ context.Context, _ string) ([]models.RuleRecord, error) {
	q, err := ReadQuestionnaire(r.rulesFile)
	if err != nil {
		return nil, err
	}
	return q.Rules, nil
}

// ReadQuestionnaire decodes one questionnaire file. Unknown fields are rejected so
// that misspelt keys such as `display_conditon` do not silently disappear.
func ReadQuestionnaire(path string) (*models.Questionnaire, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStoreConnectionFailedError(fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var q models.Questionnaire
	if err := dec.Decode(&q); err != nil {
		return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid, fmt.Sprintf("%s: %v", path, err))
	}
	return &q, nil
}
