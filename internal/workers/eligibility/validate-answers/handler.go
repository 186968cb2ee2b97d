package validateanswers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/common/metrics"
	"aid-eligibility-workers/internal/common/validation"
	"aid-eligibility-workers/internal/engine"
)

const TaskType = "validate-answers"

type Handler struct {
	config       *Config
	engines      engine.Provider
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engines engine.Provider, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engines:      engines,
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

// Execute reports missing and malformed answers. An invalid answer set is a normal
// result for the process to route on, not a job failure.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	answers, ok := input.answerSet()
	if !ok {
		return nil, errors.NewInputValidationError("answers or interview is required")
	}

	e, err := h.engines.Engine(ctx)
	if err != nil {
		return nil, err
	}

	v := e.ValidateAnswers(answers)
	if len(v.UnknownKeys) > 0 {
		h.logger.Warn("Answers carry keys no question asks for", map[string]interface{}{
			"unknownKeys": v.UnknownKeys,
		})
	}
	h.logger.Info("Answers validated", map[string]interface{}{
		"valid":        v.Valid,
		"missing":      len(v.MissingKeys),
		"invalid":      len(v.Invalid),
		"terminatedBy": v.TerminatedBy,
	})

	return &Output{AnswersValid: v.Valid, AnswerValidation: v}, nil
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
