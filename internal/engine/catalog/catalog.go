// Package catalog holds the ordered, validated set of interview questions.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/engine/expression"
	"aid-eligibility-workers/internal/models"
)

// AnswerType tags the kind of value a question expects.
type AnswerType string

const (
	AnswerBoolean AnswerType = "boolean"
	AnswerEnum    AnswerType = "enum"
	AnswerNumber  AnswerType = "number"
)

// ParseAnswerType accepts the canonical tags plus the aliases found in question data.
func ParseAnswerType(s string) (AnswerType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool", "yesno":
		return AnswerBoolean, true
	case "enum", "enumchoice", "choice", "select":
		return AnswerEnum, true
	case "number", "numeric", "int", "integer", "float":
		return AnswerNumber, true
	}
	return "", false
}

// Question is an immutable catalog entry.
type Question struct {
	ID               string            `json:"id"`
	Order            int               `json:"order"`
	Text             string            `json:"text"`
	AnswerKey        string            `json:"answerKey"`
	AnswerType       AnswerType        `json:"answerType"`
	Options          map[string]string `json:"options,omitempty"`
	BranchMap        map[string]string `json:"branchMap,omitempty"`
	DisplayCondition string            `json:"displayCondition,omitempty"`
}

// Catalog is safe for concurrent reads once loaded.
type Catalog struct {
	questions []*Question
	byID      map[string]*Question
	byKey     map[string]*Question
	index     map[string]int
}

// Load validates records and sorts them by order. All failures are catalog errors.
func Load(records []models.QuestionRecord) (*Catalog, error) {
	if len(records) == 0 {
		return nil, errors.NewCatalogError(errors.ErrCodeCatalogEmpty, "no question records")
	}

	c := &Catalog{
		questions: make([]*Question, 0, len(records)),
		byID:      make(map[string]*Question, len(records)),
		byKey:     make(map[string]*Question, len(records)),
		index:     make(map[string]int, len(records)),
	}
	orders := make(map[int]string, len(records))

	for _, rec := range records {
		q, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, errors.NewCatalogError(errors.ErrCodeCatalogDuplicateID, fmt.Sprintf("question id %q", q.ID))
		}
		if other, dup := c.byKey[q.AnswerKey]; dup {
			return nil, errors.NewCatalogError(errors.ErrCodeCatalogDuplicateKey,
				fmt.Sprintf("answer key %q used by %q and %q", q.AnswerKey, other.ID, q.ID))
		}
		if other, dup := orders[q.Order]; dup {
			return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid,
				fmt.Sprintf("order %d used by %q and %q", q.Order, other, q.ID))
		}
		orders[q.Order] = q.ID
		c.byID[q.ID] = q
		c.byKey[q.AnswerKey] = q
		c.questions = append(c.questions, q)
	}

	sort.Slice(c.questions, func(i, j int) bool {
		return c.questions[i].Order < c.questions[j].Order
	})
	for i, q := range c.questions {
		c.index[q.ID] = i
	}
	return c, nil
}

func fromRecord(rec models.QuestionRecord) (*Question, error) {
	id := strings.TrimSpace(rec.ID)
	key := strings.TrimSpace(rec.AnswerKey)
	if id == "" {
		return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid, "question without id")
	}
	if key == "" {
		return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid, fmt.Sprintf("question %q has no answer key", id))
	}

	answerType, ok := ParseAnswerType(rec.AnswerType)
	if !ok {
		return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid,
			fmt.Sprintf("question %q has unknown answer type %q", id, rec.AnswerType))
	}
	if answerType != AnswerNumber && len(rec.Options) == 0 {
		return nil, errors.NewCatalogError(errors.ErrCodeCatalogInvalid,
			fmt.Sprintf("question %q of type %s has no options", id, answerType))
	}

	return &Question{
		ID:               id,
		Order:            rec.Order,
		Text:             rec.Text,
		AnswerKey:        key,
		AnswerType:       answerType,
		Options:          copyMap(rec.Options),
		BranchMap:        copyMap(rec.BranchMap),
		DisplayCondition: strings.TrimSpace(rec.DisplayCondition),
	}, nil
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *Catalog) ByID(id string) (*Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

func (c *Catalog) ByKey(answerKey string) (*Question, bool) {
	q, ok := c.byKey[answerKey]
	return q, ok
}

// Questions returns the questions in catalog order. The slice must not be modified.
func (c *Catalog) Questions() []*Question {
	return c.questions
}

func (c *Catalog) Len() int {
	return len(c.questions)
}

// Index returns the position of a question id in catalog order, or -1.
func (c *Catalog) Index(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// At returns the question at position i in catalog order.
func (c *Catalog) At(i int) *Question {
	return c.questions[i]
}

// ShouldShow reports whether q is relevant for answers.
func ShouldShow(e *expression.Evaluator, q *Question, answers models.AnswerSet) bool {
	if q.DisplayCondition == "" {
		return true
	}
	return e.Evaluate(q.DisplayCondition, answers)
}

// ValidateValue checks value against the question's answer type.
func ValidateValue(q *Question, value interface{}) error {
	if value == nil {
		return errors.NewAnswerInvalidError(q.AnswerKey, "value is required")
	}

	switch q.AnswerType {
	case AnswerNumber:
		if _, isBool := value.(bool); isBool {
			return errors.NewAnswerInvalidError(q.AnswerKey, "expected a number, got a boolean")
		}
		if _, err := cast.ToFloat64E(value); err != nil {
			return errors.NewAnswerInvalidError(q.AnswerKey, fmt.Sprintf("expected a number, got %v", value))
		}
	default:
		code := cast.ToString(value)
		if _, ok := q.Options[code]; !ok {
			return errors.NewAnswerInvalidError(q.AnswerKey,
				fmt.Sprintf("%q is not one of the options of %s", code, q.ID))
		}
	}
	return nil
}

// OptionCodes returns the option codes of q in sorted order.
func (q *Question) OptionCodes() []string {
	codes := make([]string, 0, len(q.Options))
	for code := range q.Options {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
