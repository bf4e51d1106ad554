// internal/workers/immigration/notify-crs-result/handler.go
package notifycrsresult

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"immigration-workers/internal/common/aws"
	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/common/metrics"
	"immigration-workers/internal/common/validation"
	"immigration-workers/internal/crs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-crs-result"
)

var (
	ErrAssessmentMissing = stderrors.New("ASSESSMENT_MISSING")
)

const selectApplicant = `SELECT full_name, email, phone FROM applicants WHERE user_id = $1`

type EmailSender interface {
	Send(ctx context.Context, msg aws.Email) (string, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	db         *sql.DB
	email      EmailSender
	sms        SMSSender
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler builds the notification worker. email and sms may be nil when
// the matching channel is disabled.
func NewHandler(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		email:      email,
		sms:        sms,
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
	if input.Assessment == nil {
		return nil, errors.NewInputParsingFailedError(ErrAssessmentMissing)
	}
	verdict := input.Assessment.Verdict

	tmpl, ok := templates[verdict]
	if !ok {
		return nil, errors.NewTemplateNotFoundError(string(verdict))
	}

	recipient, err := h.recipient(ctx, input)
	if err != nil {
		return nil, err
	}

	msg, err := tmpl.render(newTemplateData(recipient.Name, input.AssessmentID, input.Assessment))
	if err != nil {
		return nil, errors.NewTemplateNotFoundError(string(verdict)).WithMetadata("renderError", err.Error())
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         h.now(),
	}

	if h.config.EmailEnabled && h.email != nil {
		switch {
		case recipient.Email == "":
		case !validation.ValidateEmail(recipient.Email):
			h.logger.Warn("skipping email, address is malformed", map[string]interface{}{"userId": input.UserID})
		default:
			// Nothing has been delivered yet, so a retry is safe.
			if _, err := h.email.Send(ctx, aws.Email{
				To:       recipient.Email,
				Subject:  msg.Subject,
				TextBody: msg.Text,
				HTMLBody: msg.HTML,
			}); err != nil {
				return nil, errors.NewNotificationSendFailedError(ChannelEmail, err)
			}
			output.Channels = append(output.Channels, ChannelEmail)
		}
	}

	if h.config.SMSEnabled && h.sms != nil && verdict == crs.VerdictMeetsCutoff {
		switch {
		case recipient.Phone == "":
		case !validation.ValidatePhone(recipient.Phone):
			h.logger.Warn("skipping sms, phone is not E.164", map[string]interface{}{"userId": input.UserID})
		default:
			if _, err := h.sms.SendSMS(ctx, recipient.Phone, msg.SMS); err != nil {
				if len(output.Channels) == 0 {
					return nil, errors.NewNotificationSendFailedError(ChannelSMS, err)
				}
				h.logger.Warn("sms send failed after email was delivered", map[string]interface{}{
					"error":  err,
					"userId": input.UserID,
				})
				output.Status = StatusPartial
				return output, nil
			}
			output.Channels = append(output.Channels, ChannelSMS)
		}
	}

	if len(output.Channels) > 0 {
		output.Status = StatusSent
	}

	h.logger.Info("crs result notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"userId":         input.UserID,
		"verdict":        string(verdict),
		"status":         output.Status,
		"channels":       output.Channels,
	})
	return output, nil
}

// recipient prefers the inline contact and falls back to the applicants table.
func (h *Handler) recipient(ctx context.Context, input *Input) (Recipient, error) {
	if r := input.Recipient; r != nil && (r.Email != "" || r.Phone != "") {
		return *r, nil
	}
	if h.db == nil {
		return Recipient{}, errors.NewRecipientNotFoundError(input.UserID)
	}

	var (
		name         string
		email, phone sql.NullString
	)
	err := h.db.QueryRowContext(ctx, selectApplicant, input.UserID).Scan(&name, &email, &phone)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return Recipient{}, errors.NewRecipientNotFoundError(input.UserID)
	case err != nil:
		return Recipient{}, errors.NewQueryExecutionFailedError("select", err)
	}

	r := Recipient{Name: name, Email: email.String, Phone: phone.String}
	if input.Recipient != nil && input.Recipient.Name != "" {
		r.Name = input.Recipient.Name
	}
	return r, nil
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, started time.Time, err error) {
	bpmnErr := h.errHandler.HandleJobError(context.Background(), client, job, err)
	metrics.ObserveJob(TaskType, started, bpmnErr.Code)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
