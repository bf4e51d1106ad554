// internal/workers/immigration/search-immigration-programs/handler.go
package searchimmigrationprograms

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/common/metrics"
	"immigration-workers/internal/crs"
	"immigration-workers/internal/workers/immigration/search-immigration-programs/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "search-immigration-programs"
)

var (
	ErrUnknownCategory = stderrors.New("UNKNOWN_CATEGORY")
)

type Handler struct {
	config     *Config
	client     *elasticsearch.Client
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		client:     client,
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
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(client, job, started, errors.NewInputParsingFailedError(err))
		return
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
	switch crs.ProgramCategory(input.Category) {
	case "", crs.CategoryExpressEntry, crs.CategoryProvincialNominee, crs.CategoryOther:
	default:
		return nil, errors.NewInputParsingFailedError(ErrUnknownCategory).
			WithMetadata("category", input.Category)
	}

	q := queries.ProgramQuery{
		Index:    h.config.Index,
		Text:     input.Query,
		Category: input.Category,
		Province: input.Province,
		From:     input.From,
		Size:     input.Size,
	}

	result, err := queries.Execute(ctx, h.client, q)
	if err != nil {
		return nil, h.mapError(ctx, err)
	}

	h.logger.Info("program search completed", map[string]interface{}{
		"query":     input.Query,
		"category":  input.Category,
		"province":  input.Province,
		"totalHits": result.TotalHits,
	})

	return &Output{
		Programs:  result.Hits,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func (h *Handler) mapError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewSearchTimeoutError(h.config.Index)
	}
	if stderrors.Is(err, queries.ErrMissingIndex) {
		return errors.NewIndexNotFoundError("")
	}

	var respErr *queries.ResponseError
	if stderrors.As(err, &respErr) {
		if respErr.IndexMissing() {
			return errors.NewIndexNotFoundError(h.config.Index)
		}
		return errors.NewSearchQueryFailedError(h.config.Index, err)
	}
	return errors.NewElasticsearchConnectionFailedError(err)
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, started time.Time, err error) {
	bpmnErr := h.errHandler.HandleJobError(context.Background(), client, job, err)
	metrics.ObserveJob(TaskType, started, bpmnErr.Code)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
