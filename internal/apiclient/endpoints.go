package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"qms/queue-client/internal/models"
	"qms/queue-client/internal/session"
)

type Op string

const (
	OpLogin           Op = "login"
	OpForgotPassword  Op = "forgot_password"
	OpResetPassword   Op = "reset_password"
	OpChangePassword  Op = "change_password"
	OpAdminCounters   Op = "admin_counters"
	OpCreateCounter   Op = "create_counter"
	OpDeleteCounter   Op = "delete_counter"
	OpAssignStaff     Op = "assign_staff"
	OpAssignedCounter Op = "assigned_counter"
	OpPublicCounters  Op = "public_counters"
	OpAllQueues       Op = "all_queues"
	OpQueueByCounter  Op = "queue_by_counter"
	OpJoinQueue       Op = "join_queue"
	OpQueueEntry      Op = "queue_entry"
	OpMarkServed      Op = "mark_served"
	OpAllStaff        Op = "all_staff"
	OpUsers           Op = "users"
	OpCreateUser      Op = "create_user"
	OpFilterReport    Op = "filter_report"
	OpDownloadReport  Op = "download_report"
)

func id64(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Auth

func (c *Client) Login(ctx context.Context, input models.LoginInput) (models.LoginResult, error) {
	var out models.LoginResult
	err := c.doJSON(ctx, request{op: OpLogin, method: http.MethodPost, path: "/api/auth/login", body: input}, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.doText(ctx, request{
		op: OpForgotPassword, method: http.MethodPost, path: "/api/auth/forgot-password",
		body: map[string]string{"email": email},
	})
}

func (c *Client) ResetPassword(ctx context.Context, input models.ResetPasswordInput) (string, error) {
	return c.doText(ctx, request{op: OpResetPassword, method: http.MethodPost, path: "/api/auth/reset-password", body: input})
}

// ChangePassword picks the role-specific endpoint; customers fall back to the
// generic one.
func (c *Client) ChangePassword(ctx context.Context, role session.Role, input models.ChangePasswordInput) (string, error) {
	path := "/api/auth/change-password"
	switch role {
	case session.RoleAdmin:
		path = "/api/auth/admin/change-password"
	case session.RoleStaff:
		path = "/api/auth/staff/change-password"
	}
	return c.doText(ctx, request{op: OpChangePassword, method: http.MethodPost, path: path, body: input, auth: true})
}

// Counters

func (c *Client) AdminCounters(ctx context.Context) ([]models.Counter, error) {
	var out []models.Counter
	err := c.doJSON(ctx, request{op: OpAdminCounters, method: http.MethodGet, path: "/api/admin/counters", auth: true}, &out)
	return out, err
}

func (c *Client) CreateCounter(ctx context.Context, input models.CreateCounterInput) (models.Counter, error) {
	var out models.Counter
	err := c.doJSON(ctx, request{op: OpCreateCounter, method: http.MethodPost, path: "/api/admin/counters", body: input, auth: true}, &out)
	return out, err
}

func (c *Client) DeleteCounter(ctx context.Context, id int64) error {
	return c.doJSON(ctx, request{op: OpDeleteCounter, method: http.MethodDelete, path: "/api/admin/counters/" + id64(id), auth: true}, nil)
}

func (c *Client) AssignStaff(ctx context.Context, counterID, staffID int64) (models.Counter, error) {
	var out models.Counter
	err := c.doJSON(ctx, request{
		op: OpAssignStaff, method: http.MethodPut,
		path:  "/api/admin/counters/" + id64(counterID) + "/assign-staff",
		query: url.Values{"staffId": {id64(staffID)}},
		auth:  true,
	}, &out)
	return out, err
}

// AssignedCounter returns nil when the staff member has no counter yet.
func (c *Client) AssignedCounter(ctx context.Context) (*models.Counter, error) {
	var out *models.Counter
	err := c.doJSON(ctx, request{op: OpAssignedCounter, method: http.MethodGet, path: "/counters/assigned", auth: true}, &out)
	if err != nil {
		return nil, err
	}
	if out != nil && out.ID == 0 {
		return nil, nil
	}
	return out, nil
}

func (c *Client) PublicCounters(ctx context.Context) ([]models.Counter, error) {
	var out []models.Counter
	err := c.doJSON(ctx, request{op: OpPublicCounters, method: http.MethodGet, path: "/counters/all"}, &out)
	return out, err
}

// Queue

func (c *Client) AllQueues(ctx context.Context) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	err := c.doJSON(ctx, request{op: OpAllQueues, method: http.MethodGet, path: "/queues/all", auth: true}, &out)
	return out, err
}

// QueueByCounter treats any non-array body as an empty queue.
func (c *Client) QueueByCounter(ctx context.Context, counterID int64) ([]models.QueueEntry, error) {
	var raw json.RawMessage
	err := c.doJSON(ctx, request{op: OpQueueByCounter, method: http.MethodGet, path: "/queue/" + id64(counterID), auth: true}, &raw)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []models.QueueEntry{}, nil
	}
	var out []models.QueueEntry
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, &Error{Op: OpQueueByCounter, Status: http.StatusOK, Err: err}
	}
	return out, nil
}

func (c *Client) JoinQueue(ctx context.Context, input models.JoinQueueInput) (models.QueueEntry, error) {
	var out models.QueueEntry
	err := c.doJSON(ctx, request{
		op: OpJoinQueue, method: http.MethodPost,
		path: "/queue/join/" + id64(input.CounterID),
		body: input,
	}, &out)
	return out, err
}

func (c *Client) QueueEntry(ctx context.Context, id string) (models.QueueEntry, error) {
	var out models.QueueEntry
	err := c.doJSON(ctx, request{op: OpQueueEntry, method: http.MethodGet, path: "/queue/entry/" + url.PathEscape(id)}, &out)
	return out, err
}

func (c *Client) MarkServed(ctx context.Context, id int64) error {
	return c.doJSON(ctx, request{op: OpMarkServed, method: http.MethodPut, path: "/api/queue/serve/" + id64(id), auth: true}, nil)
}

// Staff and users

func (c *Client) AllStaff(ctx context.Context) ([]models.Staff, error) {
	var out []models.Staff
	err := c.doJSON(ctx, request{op: OpAllStaff, method: http.MethodGet, path: "/api/admin/staff", auth: true}, &out)
	return out, err
}

func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.doJSON(ctx, request{op: OpUsers, method: http.MethodGet, path: "/api/admin/users", auth: true}, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, input models.CreateUserInput) (string, error) {
	return c.doText(ctx, request{op: OpCreateUser, method: http.MethodPost, path: "/api/admin/create-user", body: input, auth: true})
}

// Reports

func reportQuery(filter models.ReportFilter) url.Values {
	query := url.Values{}
	if filter.StartDate != "" {
		query.Set("startDate", filter.StartDate)
	}
	if filter.EndDate != "" {
		query.Set("endDate", filter.EndDate)
	}
	return query
}

func (c *Client) FilterReport(ctx context.Context, filter models.ReportFilter) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	err := c.doJSON(ctx, request{
		op: OpFilterReport, method: http.MethodGet, path: "/api/admin/reports/filter",
		query: reportQuery(filter), auth: true,
	}, &out)
	return out, err
}

// DownloadReport returns the spreadsheet bytes as sent. A range with no
// entries may legitimately produce an empty payload.
func (c *Client) DownloadReport(ctx context.Context, filter models.ReportFilter) ([]byte, error) {
	raw, _, err := c.do(ctx, request{
		op: OpDownloadReport, method: http.MethodGet, path: "/api/admin/reports/download",
		query: reportQuery(filter), auth: true,
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = []byte{}
	}
	return raw, nil
}
