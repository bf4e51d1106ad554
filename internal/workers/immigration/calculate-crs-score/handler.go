// internal/workers/immigration/calculate-crs-score/handler.go
package calculatecrsscore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/common/metrics"
	"immigration-workers/internal/common/observability"
	"immigration-workers/internal/common/validation"
	"immigration-workers/internal/crs"
	"immigration-workers/internal/cutoff"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	TaskType = "calculate-crs-score"
)

var (
	ErrProfileMissing = stderrors.New("PROFILE_MISSING")
)

// CutoffProvider resolves the current cutoff and recent draws.
type CutoffProvider interface {
	LatestCutoff(ctx context.Context) (cutoff.Cutoff, error)
	RecentDraws(ctx context.Context) ([]crs.Draw, error)
}

type Handler struct {
	config     *Config
	engine     *crs.Engine
	cutoffs    CutoffProvider
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler builds the scoring worker. cutoffs may be nil, in which case
// every job must carry its own cutoff.
func NewHandler(config *Config, engine *crs.Engine, cutoffs CutoffProvider, obs *observability.Observability, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
		cutoffs:    cutoffs,
		obs:        obs,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(client, job, started, errors.NewInputParsingFailedError(err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(client, job, started, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.ObserveJob(TaskType, started, "")
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(started), "completed")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile, err := h.decodeProfile(input)
	if err != nil {
		return nil, err
	}

	cutoffScore, source, err := h.resolveCutoff(ctx, input)
	if err != nil {
		return nil, err
	}

	ctx, span := h.obs.StartSpan(ctx, "crs.score",
		attribute.String("requestId", input.RequestID),
		attribute.Int("cutoff", cutoffScore),
	)
	defer span.End()

	result, err := h.engine.Score(profile, cutoffScore)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, toStandardError(err, cutoffScore)
	}
	span.SetAttributes(
		attribute.Int("total", result.Breakdown.Total),
		attribute.String("verdict", string(result.Verdict)),
	)

	if len(result.UnknownValues) > 0 {
		h.logger.Warn("profile values not found in points tables", map[string]interface{}{
			"requestId": input.RequestID,
			"unknown":   result.UnknownValues,
		})
	}

	output := &Output{
		RequestID:    input.RequestID,
		UserID:       input.UserID,
		Assessment:   result,
		CutoffSource: source,
		ScoredAt:     h.now(),
	}

	if h.config.IncludeTrends && h.cutoffs != nil {
		draws, err := h.cutoffs.RecentDraws(ctx)
		if err != nil {
			h.logger.Warn("recent draws unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			output.Trends = crs.AnalyzeDraws(profile, result.Breakdown.Total, draws)
		}
	}

	metrics.ObserveAssessment(string(result.Verdict), result.Breakdown.Total)
	h.logger.Info("crs score calculated", map[string]interface{}{
		"requestId":      input.RequestID,
		"total":          result.Breakdown.Total,
		"verdict":        result.Verdict,
		"cutoff":         cutoffScore,
		"cutoffSource":   source,
		"programMatches": len(result.ProgramMatches),
	})
	return output, nil
}

func (h *Handler) decodeProfile(input *Input) (crs.Profile, error) {
	var profile crs.Profile
	if len(input.Profile) == 0 || string(input.Profile) == "null" {
		return profile, errors.NewProfileValidationFailedError(ErrProfileMissing.Error())
	}

	var doc interface{}
	if err := json.Unmarshal(input.Profile, &doc); err != nil {
		return profile, errors.NewInputParsingFailedError(err)
	}
	res, err := validation.ValidateProfile(doc)
	if err != nil {
		return profile, err
	}
	if !res.Valid {
		return profile, errors.NewProfileValidationFailedError(strings.Join(res.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal(input.Profile, &profile); err != nil {
		return profile, errors.NewInputParsingFailedError(err)
	}

	if tests := input.LanguageTests; tests != nil {
		if tests.First != nil {
			prof, err := tests.First.Proficiency()
			if err != nil {
				return profile, errors.NewProfileValidationFailedError(fmt.Sprintf("languageTests.first: %v", err))
			}
			profile.Languages.First = prof
		}
		if tests.Second != nil {
			prof, err := tests.Second.Proficiency()
			if err != nil {
				return profile, errors.NewProfileValidationFailedError(fmt.Sprintf("languageTests.second: %v", err))
			}
			profile.Languages.Second = &prof
		}
	}
	return profile, nil
}

func (h *Handler) resolveCutoff(ctx context.Context, input *Input) (int, string, error) {
	if input.Cutoff != nil {
		return *input.Cutoff, cutoff.SourceInput, nil
	}
	if h.cutoffs == nil {
		return 0, "", errors.NewCutoffUnavailableError("no cutoff supplied and no draw store configured")
	}
	c, err := h.cutoffs.LatestCutoff(ctx)
	if err != nil {
		return 0, "", err
	}
	return c.Score, c.Source, nil
}

// toStandardError maps engine sentinels onto job error codes.
func toStandardError(err error, cutoffScore int) error {
	switch {
	case stderrors.Is(err, crs.ErrInvalidCutoff):
		return errors.NewInvalidCutoffError(cutoffScore)
	case stderrors.Is(err, crs.ErrCatalogUnavailable):
		return errors.NewCatalogUnavailableError(err.Error())
	case stderrors.Is(err, crs.ErrProfileValidation):
		return errors.NewProfileValidationFailedError(err.Error())
	case stderrors.Is(err, crs.ErrUnknownTableValue):
		return errors.NewUnknownTableValueError(err.Error())
	default:
		return err
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

// fail reports err with a fresh context so an expired job deadline does not
// swallow the failure.
func (h *Handler) fail(client worker.JobClient, job entities.Job, started time.Time, err error) {
	ctx := context.Background()
	bpmnErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.ObserveJob(TaskType, started, bpmnErr.Code)
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(started), "failed")
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
