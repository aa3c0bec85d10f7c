package ui

import (
	"context"
	"errors"
	"strings"

	"qms/queue-client/internal/apiclient"
	"qms/queue-client/internal/models"
	"qms/queue-client/internal/session"
)

// Backend is the subset of the API client the screens call.
type Backend interface {
	Login(ctx context.Context, input models.LoginInput) (models.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, input models.ResetPasswordInput) (string, error)
	ChangePassword(ctx context.Context, role session.Role, input models.ChangePasswordInput) (string, error)

	AdminCounters(ctx context.Context) ([]models.Counter, error)
	CreateCounter(ctx context.Context, input models.CreateCounterInput) (models.Counter, error)
	DeleteCounter(ctx context.Context, id int64) error
	AssignStaff(ctx context.Context, counterID, staffID int64) (models.Counter, error)
	AssignedCounter(ctx context.Context) (*models.Counter, error)
	PublicCounters(ctx context.Context) ([]models.Counter, error)

	AllQueues(ctx context.Context) ([]models.QueueEntry, error)
	QueueByCounter(ctx context.Context, counterID int64) ([]models.QueueEntry, error)
	JoinQueue(ctx context.Context, input models.JoinQueueInput) (models.QueueEntry, error)
	MarkServed(ctx context.Context, id int64) error

	AllStaff(ctx context.Context) ([]models.Staff, error)
	Users(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, input models.CreateUserInput) (string, error)
	FilterReport(ctx context.Context, filter models.ReportFilter) ([]models.QueueEntry, error)
	DownloadReport(ctx context.Context, filter models.ReportFilter) ([]byte, error)
}

var _ Backend = (*apiclient.Client)(nil)

// messageOr prefers the backend's own message and otherwise returns fallback.
func messageOr(err error, fallback string) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// backendText is used by the password screens, which show whatever the
// backend answered, including bare text bodies.
func backendText(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if body := strings.TrimSpace(apiErr.Body); body != "" && !strings.HasPrefix(body, "{") {
			return body
		}
	}
	return apiclient.UserMessage(err)
}

func isSuccessText(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "success")
}

func errorsIsUnauthorized(err error) bool {
	return errors.Is(err, apiclient.ErrUnauthorized)
}
