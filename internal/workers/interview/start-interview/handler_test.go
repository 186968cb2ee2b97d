package startinterview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/common/config"
	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/engine/enginetest"
	"aid-eligibility-workers/internal/engine/navigator"
)

func newTestHandler(t *testing.T, opts ...engine.Option) *Handler {
	e := enginetest.New(t, opts...)
	return NewHandler(DefaultConfig(), engine.Static(e), nil, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		wantSession string
	}{
		{name: "explicit session", input: &Input{SessionID: "session-1"}, wantSession: "session-1"},
		{name: "generated session", input: &Input{}, wantSession: "generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, engine.WithSessionIDGenerator(func() string { return "generated" }))

			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSession, out.Interview.SessionID)
			assert.Equal(t, navigator.StatusAwaitingAnswer, out.Interview.Status)
			require.NotNil(t, out.CurrentQuestion)
			assert.Equal(t, "q1", out.CurrentQuestion.ID)
			assert.Equal(t, "q_residence_lux", out.CurrentQuestion.AnswerKey)
			assert.False(t, out.InterviewComplete)
			assert.Equal(t, 25, out.Progress)
		})
	}
}

func TestHandler_Execute_EngineUnavailable(t *testing.T) {
	h := NewHandler(DefaultConfig(), failingProvider{}, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreQueryFailed))
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t)

	input, err := h.parseInput(enginetest.Job(t, TaskType, map[string]interface{}{
		"sessionId":   "abc",
		"applicantId": 42,
	}))
	require.NoError(t, err)
	assert.Equal(t, "abc", input.SessionID)

	_, err = h.parseInput(enginetest.Job(t, TaskType, map[string]interface{}{"sessionId": 7}))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInputValidationFailed))
}

func TestFromWorkerConfig(t *testing.T) {
	cfg := FromWorkerConfig(config.WorkerConfig{Enabled: true, MaxJobsActive: 2, Timeout: 1500})
	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, "1.5s", cfg.Timeout.String())
	assert.NoError(t, cfg.Validate())

	cfg.MaxJobsActive = 0
	assert.Error(t, cfg.Validate())
}

type failingProvider struct{}

func (failingProvider) Engine(context.Context) (*engine.Engine, error) {
	return nil, errors.NewStoreQueryFailedError("questions", context.DeadlineExceeded)
}
