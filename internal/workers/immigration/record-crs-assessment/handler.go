// internal/workers/immigration/record-crs-assessment/handler.go
package recordcrsassessment

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-crs-assessment"
)

var (
	ErrAssessmentMissing = stderrors.New("ASSESSMENT_MISSING")
	ErrRequestIDMissing  = stderrors.New("REQUEST_ID_MISSING")
)

const insertAssessment = `
	INSERT INTO crs_assessments (
		id, request_id, user_id, total, verdict, cutoff, points_to_cutoff,
		breakdown, recommendations, program_matches, unknown_values, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (request_id) DO NOTHING
	RETURNING id`

const selectByRequest = `SELECT id, user_id, created_at FROM crs_assessments WHERE request_id = $1`

type Handler struct {
	config     *Config
	db         *sql.DB
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		errHandler: errors.NewErrorHandler(scoped),
		logger:     scoped,
		now:        func() time.Time { return time.Now().UTC() },
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
	if input.RequestID == "" {
		return nil, errors.NewInputParsingFailedError(ErrRequestIDMissing)
	}
	if input.Assessment == nil {
		return nil, errors.NewInputParsingFailedError(ErrAssessmentMissing)
	}

	a := input.Assessment
	breakdown, err := json.Marshal(a.Breakdown)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	recommendations, err := jsonArray(a.Recommendations)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	matches, err := jsonArray(a.ProgramMatches)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
	unknown, err := jsonArray(a.UnknownValues)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	id := uuid.New().String()
	recordedAt := h.now()

	var stored string
	err = h.db.QueryRowContext(ctx, insertAssessment,
		id,
		input.RequestID,
		input.UserID,
		a.Breakdown.Total,
		string(a.Verdict),
		a.Cutoff,
		a.PointsToCutoff,
		breakdown,
		recommendations,
		matches,
		unknown,
		recordedAt,
	).Scan(&stored)

	switch {
	case err == nil:
		h.logger.Info("assessment recorded", map[string]interface{}{
			"assessmentId": stored,
			"requestId":    input.RequestID,
			"userId":       input.UserID,
			"total":        a.Breakdown.Total,
			"verdict":      string(a.Verdict),
		})
		return &Output{AssessmentID: stored, RecordedAt: recordedAt}, nil
	case stderrors.Is(err, sql.ErrNoRows):
		return h.existing(ctx, input)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.NewQueryTimeoutError("insert")
	default:
		return nil, errors.NewDatabaseInsertFailedError(err)
	}
}

// existing resolves a request that was already recorded. The same request id
// under a different user is a conflict rather than a replay.
func (h *Handler) existing(ctx context.Context, input *Input) (*Output, error) {
	var (
		id        string
		userID    string
		createdAt time.Time
	)
	err := h.db.QueryRowContext(ctx, selectByRequest, input.RequestID).Scan(&id, &userID, &createdAt)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("select", err)
	}
	if userID != input.UserID {
		return nil, errors.NewDuplicateAssessmentError(id).
			WithMetadata("requestId", input.RequestID)
	}

	h.logger.Info("assessment already recorded", map[string]interface{}{
		"assessmentId": id,
		"requestId":    input.RequestID,
	})
	return &Output{AssessmentID: id, Duplicate: true, RecordedAt: createdAt}, nil
}

// jsonArray keeps nil slices as [] so the JSONB columns never hold null.
func jsonArray[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, started time.Time, err error) {
	bpmnErr := h.errHandler.HandleJobError(context.Background(), client, job, err)
	metrics.ObserveJob(TaskType, started, bpmnErr.Code)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
