// internal/workers/immigration/notify-crs-result/handler_test.go
package notifycrsresult

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"immigration-workers/internal/common/aws"
	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"
	"immigration-workers/internal/crs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEmail struct {
	mock.Mock
}

func (m *MockEmail) Send(ctx context.Context, msg aws.Email) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type MockSMS struct {
	mock.Mock
}

func (m *MockSMS) SendSMS(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

var sentAt = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func assessment(verdict crs.Verdict, total, cutoff int) *crs.Result {
	gap := cutoff - total
	if gap < 0 {
		gap = 0
	}
	return &crs.Result{
		Breakdown:      crs.Breakdown{Total: total},
		Verdict:        verdict,
		Cutoff:         cutoff,
		PointsToCutoff: gap,
		Recommendations: []crs.Recommendation{
			{Title: "Improve first language scores", EstimatedPointGain: 24, Priority: crs.PriorityHigh},
			{Title: "Gain Canadian work experience", EstimatedPointGain: 40, Priority: crs.PriorityMedium},
			{Title: "Obtain a provincial nomination", EstimatedPointGain: 600, Priority: crs.PriorityHigh},
			{Title: "Complete additional education", EstimatedPointGain: 15, Priority: crs.PriorityLow},
		},
		ProgramMatches: []crs.ProgramMatch{
			{Name: "Federal Skilled Worker Program", Eligibility: crs.Eligible},
			{Name: "Canadian Experience Class", Eligibility: crs.NotEligible},
		},
	}
}

type fixture struct {
	handler *Handler
	email   *MockEmail
	sms     *MockSMS
	db      sqlmock.Sqlmock
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{email: &MockEmail{}, sms: &MockSMS{}, db: dbMock}
	f.handler = NewHandler(cfg, db, f.email, f.sms, logger.NewTestLogger(t))
	f.handler.now = func() time.Time { return sentAt }
	return f
}

func enabled() *Config {
	cfg := LoadConfig()
	cfg.EmailEnabled = true
	cfg.SMSEnabled = true
	return cfg
}

func TestHandler_Execute(t *testing.T) {
	inline := &Recipient{Name: "Amara", Email: "amara@example.com", Phone: "+14165550123"}

	tests := []struct {
		name           string
		config         *Config
		input          *Input
		setup          func(f *fixture)
		wantCode       errors.ErrorCode
		validateOutput func(t *testing.T, output *Output, f *fixture)
	}{
		{
			name:   "meets cutoff sends email and sms",
			config: enabled(),
			input:  &Input{UserID: "user-1", Assessment: assessment(crs.VerdictMeetsCutoff, 512, 485), Recipient: inline},
			setup: func(f *fixture) {
				f.email.On("Send", mock.Anything, mock.MatchedBy(func(e aws.Email) bool {
					return e.To == "amara@example.com" &&
						e.Subject == "Your CRS score of 512 meets the latest cutoff"
				})).Return("ses-1", nil)
				f.sms.On("SendSMS", mock.Anything, "+14165550123",
					"Your CRS score 512 meets the latest cutoff (485). Check your email for next steps.").Return("sns-1", nil)
			},
			validateOutput: func(t *testing.T, output *Output, f *fixture) {
				assert.Equal(t, StatusSent, output.Status)
				assert.Equal(t, []string{ChannelEmail, ChannelSMS}, output.Channels)
				assert.Equal(t, sentAt, output.SentAt)
				assert.NotEmpty(t, output.NotificationID)
			},
		},
		{
			name:   "near miss is email only",
			config: enabled(),
			input:  &Input{UserID: "user-1", Assessment: assessment(crs.VerdictNearMiss, 471, 485), Recipient: inline},
			setup: func(f *fixture) {
				f.email.On("Send", mock.Anything, mock.MatchedBy(func(e aws.Email) bool {
					return e.Subject == "Your CRS score of 471 is 14 points from the cutoff"
				})).Return("ses-2", nil)
			},
			validateOutput: func(t *testing.T, output *Output, f *fixture) {
				assert.Equal(t, StatusSent, output.Status)
				assert.Equal(t, []string{ChannelEmail}, output.Channels)
				f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name:   "recipient looked up from applicants",
			config: enabled(),
			input:  &Input{UserID: "user-2", Assessment: assessment(crs.VerdictBelowCutoff, 380, 485)},
			setup: func(f *fixture) {
				f.db.ExpectQuery(`SELECT full_name, email, phone FROM applicants`).
					WithArgs("user-2").
					WillReturnRows(sqlmock.NewRows([]string{"full_name", "email", "phone"}).
						AddRow("Jon", "jon@example.com", nil))
				f.email.On("Send", mock.Anything, mock.MatchedBy(func(e aws.Email) bool {
					return e.To == "jon@example.com"
				})).Return("ses-3", nil)
			},
			validateOutput: func(t *testing.T, output *Output, f *fixture) {
				assert.Equal(t, []string{ChannelEmail}, output.Channels)
				assert.NoError(t, f.db.ExpectationsWereMet())
			},
		},
		{
			name:   "unknown applicant",
			config: enabled(),
			input:  &Input{UserID: "ghost", Assessment: assessment(crs.VerdictNearMiss, 471, 485)},
			setup: func(f *fixture) {
				f.db.ExpectQuery(`SELECT full_name, email, phone FROM applicants`).
					WithArgs("ghost").
					WillReturnRows(sqlmock.NewRows([]string{"full_name", "email", "phone"}))
			},
			wantCode: errors.ErrCodeRecipientNotFound,
		},
		{
			name:     "channels disabled",
			config:   LoadConfig(),
			input:    &Input{UserID: "user-1", Assessment: assessment(crs.VerdictMeetsCutoff, 512, 485), Recipient: inline},
			setup:    func(f *fixture) {},
			validateOutput: func(t *testing.T, output *Output, f *fixture) {
				assert.Equal(t, StatusDisabled, output.Status)
				assert.Empty(t, output.Channels)
			},
		},
		{
			name:   "malformed email is skipped",
			config: enabled(),
			input: &Input{UserID: "user-1", Assessment: assessment(crs.VerdictNearMiss, 471, 485),
				Recipient: &Recipient{Email: "not-an-address"}},
			setup: func(f *fixture) {},
			validateOutput: func(t *testing.T, output *Output, f *fixture) {
				assert.Equal(t, StatusDisabled, output.Status)
				f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			},
		},
		{
			name:   "email failure is retryable",
			config: enabled(),
			input:  &Input{UserID: "user-1", Assessment: assessment(crs.VerdictMeetsCutoff, 512, 485), Recipient: inline},
			setup: func(f *fixture) {
				f.email.On("Send", mock.Anything, mock.Anything).Return("", stderrors.New("throttled"))
			},
			wantCode: errors.ErrCodeNotificationSendFailed,
		},
		{
			name:   "sms failure after email is partial",
			config: enabled(),
			input:  &Input{UserID: "user-1", Assessment: assessment(crs.VerdictMeetsCutoff, 512, 485), Recipient: inline},
			setup: func(f *fixture) {
				f.email.On("Send", mock.Anything, mock.Anything).Return("ses-4", nil)
				f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return("", stderrors.New("opted out"))
			},
			validateOutput: func(t *testing.T, output *Output, f *fixture) {
				assert.Equal(t, StatusPartial, output.Status)
				assert.Equal(t, []string{ChannelEmail}, output.Channels)
			},
		},
		{
			name:     "missing assessment",
			config:   enabled(),
			input:    &Input{UserID: "user-1", Recipient: inline},
			setup:    func(f *fixture) {},
			wantCode: errors.ErrCodeInputParsingFailed,
		},
		{
			name:     "unknown verdict",
			config:   enabled(),
			input:    &Input{UserID: "user-1", Assessment: assessment("pending", 400, 485), Recipient: inline},
			setup:    func(f *fixture) {},
			wantCode: errors.ErrCodeTemplateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.config)
			tt.setup(f)

			output, err := f.handler.Execute(context.Background(), tt.input)
			if tt.wantCode != "" {
				stdErr, ok := errors.AsStandardError(err)
				require.True(t, ok, "expected StandardError, got %v", err)
				assert.Equal(t, tt.wantCode, stdErr.Code)
				assert.Nil(t, output)
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, output, f)
			f.email.AssertExpectations(t)
			f.sms.AssertExpectations(t)
		})
	}
}

func TestTemplates_Render(t *testing.T) {
	data := newTemplateData("", "asm-1", assessment(crs.VerdictNearMiss, 471, 485))
	assert.Equal(t, "there", data.Name)
	assert.Len(t, data.Recommendations, maxTemplateRecommendations)
	assert.Equal(t, []string{"Federal Skilled Worker Program"}, data.Programs)

	msg, err := templates[crs.VerdictNearMiss].render(data)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "Hi there,")
	assert.Contains(t, msg.Text, "- Improve first language scores (+24 points, high priority)")
	assert.NotContains(t, msg.Text, "Complete additional education")
	assert.Contains(t, msg.Text, "Programs you may qualify for: Federal Skilled Worker Program")
	assert.Contains(t, msg.HTML, "<strong>471</strong>")
	assert.Equal(t, "Your CRS score is 471, 14 points from the cutoff.", msg.SMS)
}

func TestTemplates_EscapeHTML(t *testing.T) {
	data := newTemplateData("<script>x</script>", "", assessment(crs.VerdictBelowCutoff, 300, 485))
	msg, err := templates[crs.VerdictBelowCutoff].render(data)
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.Text, "<script>x</script>")
}

func TestTemplates_CoverEveryVerdict(t *testing.T) {
	for _, v := range []crs.Verdict{crs.VerdictMeetsCutoff, crs.VerdictNearMiss, crs.VerdictBelowCutoff} {
		_, ok := templates[v]
		assert.True(t, ok, "missing template for %s", v)
	}
}
