// internal/workers/immigration/refresh-crs-cutoff/handler.go
package refreshcrscutoff

import (
	"context"
	"encoding/json"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/common/metrics"
	"immigration-workers/internal/cutoff"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "refresh-crs-cutoff"
)

// Refresher runs one draw feed refresh.
type Refresher interface {
	Refresh(ctx context.Context) (*cutoff.RefreshResult, error)
}

type Handler struct {
	config     *Config
	refresher  Refresher
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, refresher Refresher, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		refresher:  refresher,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	defer metrics.TrackActive(TaskType)()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if job.Variables != "" {
		if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
			h.fail(client, job, started, errors.NewInputParsingFailedError(err))
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(client, job, started, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.ObserveJob(TaskType, started, "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.refresher.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	h.logger.Info("cutoff refresh completed", map[string]interface{}{
		"requestId":   input.RequestID,
		"cutoff":      res.Cutoff.Score,
		"drawsStored": res.DrawsStored,
	})

	return &Output{
		Cutoff:      res.Cutoff.Score,
		DrawNumber:  res.Cutoff.DrawNumber,
		DrawDate:    res.Cutoff.DrawDate.Format("2006-01-02"),
		DrawType:    res.Cutoff.DrawType,
		DrawsStored: res.DrawsStored,
		RefreshedAt: res.RefreshedAt,
	}, nil
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, started time.Time, err error) {
	bpmnErr := h.errHandler.HandleJobError(context.Background(), client, job, err)
	metrics.ObserveJob(TaskType, started, bpmnErr.Code)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
