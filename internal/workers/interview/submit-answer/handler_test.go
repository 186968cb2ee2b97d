package submitanswer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/engine/enginetest"
	"aid-eligibility-workers/internal/engine/navigator"
)

func setup(t *testing.T) (*Handler, *engine.Engine) {
	e := enginetest.New(t)
	return NewHandler(DefaultConfig(), engine.Static(e), nil, logger.NewTestLogger(t)), e
}

// roundTrip sends the state through JSON the way a process variable travels.
func roundTrip(t *testing.T, state *navigator.State) *navigator.State {
	t.Helper()
	raw, err := json.Marshal(state)
	require.NoError(t, err)
	var out navigator.State
	require.NoError(t, json.Unmarshal(raw, &out))
	return &out
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name         string
		answers      [][2]interface{}
		wantComplete bool
		wantCurrent  string
		wantReason   string
		wantBy       string
	}{
		{
			name:        "resident moves to age",
			answers:     [][2]interface{}{{"q_residence_lux", "opt_oui"}},
			wantCurrent: "q2",
		},
		{
			name:         "non resident ends",
			answers:      [][2]interface{}{{"q_residence_lux", "opt_non"}},
			wantComplete: true,
			wantReason:   navigator.ReasonEarlyTermination,
			wantBy:       "not_resident",
		},
		{
			name:         "minor ends early",
			answers:      [][2]interface{}{{"q_residence_lux", "opt_oui"}, {"q_age", 16}},
			wantComplete: true,
			wantReason:   navigator.ReasonEarlyTermination,
			wantBy:       "minor",
		},
		{
			name:        "adult sees institution question",
			answers:     [][2]interface{}{{"q_residence_lux", "opt_oui"}, {"q_age", 30}},
			wantCurrent: "q3",
		},
		{
			name: "full walk exhausts catalog",
			answers: [][2]interface{}{
				{"q_residence_lux", "opt_oui"}, {"q_age", 30}, {"q_institution", "opt_non"}, {"q_revenus_mensuels", 1800},
			},
			wantComplete: true,
			wantReason:   navigator.ReasonCatalogExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, e := setup(t)
			state := e.Start("session-1")

			var out *Output
			for _, a := range tt.answers {
				var err error
				out, err = h.Execute(context.Background(), &Input{
					Interview:   roundTrip(t, state),
					AnswerKey:   a[0].(string),
					AnswerValue: a[1],
				})
				require.NoError(t, err)
				state = out.Interview
			}

			assert.Equal(t, tt.wantComplete, out.InterviewComplete)
			assert.Equal(t, tt.wantReason, out.TerminationReason)
			assert.Equal(t, tt.wantBy, out.TerminatedBy)
			if tt.wantComplete {
				assert.Nil(t, out.CurrentQuestion)
				assert.Equal(t, 100, out.Progress)
			} else {
				require.NotNil(t, out.CurrentQuestion)
				assert.Equal(t, tt.wantCurrent, out.CurrentQuestion.ID)
				assert.Less(t, out.Progress, 100)
			}
		})
	}
}

func TestHandler_Execute_Errors(t *testing.T) {
	h, e := setup(t)
	start := e.Start("session-1")

	done, err := e.SubmitAnswer(start, "q_residence_lux", "opt_non")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    *Input
		wantCode errors.ErrorCode
	}{
		{"missing interview", &Input{AnswerKey: "q_age", AnswerValue: 20}, errors.ErrCodeInputValidationFailed},
		{"unknown key", &Input{Interview: start, AnswerKey: "q_shoe_size", AnswerValue: 42}, errors.ErrCodeAnswerKeyUnknown},
		{"invalid option", &Input{Interview: start, AnswerKey: "q_residence_lux", AnswerValue: "opt_peut_etre"}, errors.ErrCodeAnswerInvalid},
		{"non numeric age", &Input{Interview: start, AnswerKey: "q_age", AnswerValue: "vingt"}, errors.ErrCodeAnswerInvalid},
		{"completed interview", &Input{Interview: done, AnswerKey: "q_age", AnswerValue: 30}, errors.ErrCodeSessionComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestHandler_Execute_DoesNotMutateInput(t *testing.T) {
	h, e := setup(t)
	state := e.Start("session-1")

	_, err := h.Execute(context.Background(), &Input{Interview: state, AnswerKey: "q_residence_lux", AnswerValue: "opt_oui"})
	require.NoError(t, err)

	assert.Empty(t, state.Answers)
	assert.Equal(t, "q1", state.CurrentQuestionID)
}

func TestHandler_ParseInput(t *testing.T) {
	h, e := setup(t)
	state := e.Start("session-1")

	var interview map[string]interface{}
	raw, _ := json.Marshal(state)
	require.NoError(t, json.Unmarshal(raw, &interview))

	input, err := h.parseInput(enginetest.Job(t, TaskType, map[string]interface{}{
		"interview":   interview,
		"answerKey":   "q_age",
		"answerValue": 42,
	}))
	require.NoError(t, err)
	assert.Equal(t, "session-1", input.Interview.SessionID)
	assert.Equal(t, float64(42), input.AnswerValue)

	tests := []struct {
		name string
		vars map[string]interface{}
	}{
		{"missing answer key", map[string]interface{}{"interview": interview, "answerValue": 1}},
		{"missing value", map[string]interface{}{"interview": interview, "answerKey": "q_age"}},
		{"interview not an object", map[string]interface{}{"interview": "s1", "answerKey": "q_age", "answerValue": 1}},
		{"bad status", map[string]interface{}{
			"interview": map[string]interface{}{"sessionId": "s1", "status": "PAUSED"},
			"answerKey": "q_age", "answerValue": 1,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.parseInput(enginetest.Job(t, TaskType, tt.vars))
			assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed), "got %v", err)
		})
	}
}
