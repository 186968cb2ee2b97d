package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/engine/expression"
	"aid-eligibility-workers/internal/models"
)

var yesNo = map[string]string{"opt_oui": "Oui", "opt_non": "Non"}

func records() []models.QuestionRecord {
	return []models.QuestionRecord{
		{ID: "q3", Order: 30, AnswerKey: "q_institution", AnswerType: "boolean", Options: yesNo,
			DisplayCondition: "q_age >= 18"},
		{ID: "q1", Order: 10, AnswerKey: "q_residence_lux", AnswerType: "boolean", Options: yesNo},
		{ID: "q2", Order: 20, AnswerKey: "q_age", AnswerType: "number"},
	}
}

func TestLoad_SortsByOrder(t *testing.T) {
	c, err := Load(records())
	require.NoError(t, err)

	require.Equal(t, 3, c.Len())
	assert.Equal(t, "q1", c.At(0).ID)
	assert.Equal(t, "q2", c.At(1).ID)
	assert.Equal(t, "q3", c.At(2).ID)
	assert.Equal(t, 2, c.Index("q3"))
	assert.Equal(t, -1, c.Index("nope"))

	q, ok := c.ByKey("q_age")
	require.True(t, ok)
	assert.Equal(t, AnswerNumber, q.AnswerType)

	_, ok = c.ByID("q9")
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func([]models.QuestionRecord) []models.QuestionRecord
		wantCode errors.ErrorCode
	}{
		{
			name:     "empty",
			mutate:   func([]models.QuestionRecord) []models.QuestionRecord { return nil },
			wantCode: errors.ErrCodeCatalogEmpty,
		},
		{
			name: "duplicate id",
			mutate: func(r []models.QuestionRecord) []models.QuestionRecord {
				r[1].ID = "q3"
				return r
			},
			wantCode: errors.ErrCodeCatalogDuplicateID,
		},
		{
			name: "duplicate answer key",
			mutate: func(r []models.QuestionRecord) []models.QuestionRecord {
				r[2].AnswerKey = "q_institution"
				return r
			},
			wantCode: errors.ErrCodeCatalogDuplicateKey,
		},
		{
			name: "duplicate order",
			mutate: func(r []models.QuestionRecord) []models.QuestionRecord {
				r[2].Order = 10
				return r
			},
			wantCode: errors.ErrCodeCatalogInvalid,
		},
		{
			name: "unknown answer type",
			mutate: func(r []models.QuestionRecord) []models.QuestionRecord {
				r[2].AnswerType = "date"
				return r
			},
			wantCode: errors.ErrCodeCatalogInvalid,
		},
		{
			name: "enum without options",
			mutate: func(r []models.QuestionRecord) []models.QuestionRecord {
				r[1].Options = nil
				return r
			},
			wantCode: errors.ErrCodeCatalogInvalid,
		},
		{
			name: "missing answer key",
			mutate: func(r []models.QuestionRecord) []models.QuestionRecord {
				r[0].AnswerKey = " "
				return r
			},
			wantCode: errors.ErrCodeCatalogInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.mutate(records()))
			require.Error(t, err)
			assert.True(t, errors.IsCatalogError(err))
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestShouldShow(t *testing.T) {
	c, err := Load(records())
	require.NoError(t, err)
	e := expression.New()

	q1, _ := c.ByID("q1")
	q3, _ := c.ByID("q3")

	assert.True(t, ShouldShow(e, q1, nil))
	assert.False(t, ShouldShow(e, q3, models.AnswerSet{}))
	assert.False(t, ShouldShow(e, q3, models.AnswerSet{"q_age": 16}))
	assert.True(t, ShouldShow(e, q3, models.AnswerSet{"q_age": 40}))
}

func TestValidateValue(t *testing.T) {
	c, err := Load(records())
	require.NoError(t, err)
	age, _ := c.ByKey("q_age")
	residence, _ := c.ByKey("q_residence_lux")

	assert.NoError(t, ValidateValue(age, 25))
	assert.NoError(t, ValidateValue(age, "25.5"))
	assert.NoError(t, ValidateValue(residence, "opt_non"))

	for _, tc := range []struct {
		q     *Question
		value interface{}
	}{
		{age, "twenty"},
		{age, true},
		{age, nil},
		{residence, "opt_maybe"},
	} {
		err := ValidateValue(tc.q, tc.value)
		require.Error(t, err, "%v", tc.value)
		assert.True(t, errors.HasCode(err, errors.ErrCodeAnswerInvalid))
	}
}

func TestParseAnswerType(t *testing.T) {
	for in, want := range map[string]AnswerType{
		"Boolean":    AnswerBoolean,
		"EnumChoice": AnswerEnum,
		" number ":   AnswerNumber,
	} {
		got, ok := ParseAnswerType(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseAnswerType("free_text")
	assert.False(t, ok)
}
