package submitanswer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/common/metrics"
	"aid-eligibility-workers/internal/common/observability"
	"aid-eligibility-workers/internal/common/validation"
	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/engine/navigator"
)

const TaskType = "submit-answer"

type Handler struct {
	config       *Config
	engines      engine.Provider
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engines engine.Provider, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engines:      engines,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("Processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Execute records the answer and moves the interview on. Unknown keys, answers
// that do not fit the question and finished interviews are business errors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Interview == nil {
		return nil, errors.NewInputValidationError("interview is required")
	}

	e, err := h.engines.Engine(ctx)
	if err != nil {
		return nil, err
	}

	next, err := e.SubmitAnswer(input.Interview, input.AnswerKey, input.AnswerValue)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"sessionId": next.SessionID,
		"answerKey": input.AnswerKey,
		"progress":  next.Progress,
	}
	if next.IsComplete() {
		fields["terminationReason"] = next.TerminationReason
		h.logger.Info("Interview complete", fields)
		h.obs.RecordSession(ctx, "completed")
		if next.TerminationReason == navigator.ReasonEarlyTermination {
			h.obs.RecordSession(ctx, "terminated_early")
		}
	} else {
		fields["currentQuestion"] = next.CurrentQuestionID
		h.logger.Debug("Answer recorded", fields)
	}

	return &Output{
		Interview:         next,
		CurrentQuestion:   e.CurrentQuestion(next),
		InterviewComplete: next.IsComplete(),
		Progress:          next.Progress,
		TerminationReason: next.TerminationReason,
		TerminatedBy:      next.TerminatedBy,
		Warnings:          next.Warnings,
	}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}
	if result := validation.ValidateInput(variables, GetInputSchema()); !result.Valid {
		return nil, errors.NewInputValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInputValidationError(err.Error())
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errors.CodeOf(err)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
