package ui

import (
	"context"
	"testing"
	"time"

	"qms/queue-client/internal/credstore"
	"qms/queue-client/internal/models"
	"qms/queue-client/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	jwt "github.com/golang-jwt/jwt/v5"
)

type fakeBackend struct {
	login           func(models.LoginInput) (models.LoginResult, error)
	forgotPassword  func(string) (string, error)
	resetPassword   func(models.ResetPasswordInput) (string, error)
	changePassword  func(session.Role, models.ChangePasswordInput) (string, error)
	adminCounters   func() ([]models.Counter, error)
	createCounter   func(models.CreateCounterInput) (models.Counter, error)
	deleteCounter   func(int64) error
	assignStaff     func(int64, int64) (models.Counter, error)
	assignedCounter func() (*models.Counter, error)
	publicCounters  func() ([]models.Counter, error)
	allQueues       func() ([]models.QueueEntry, error)
	queueByCounter  func(int64) ([]models.QueueEntry, error)
	joinQueue       func(models.JoinQueueInput) (models.QueueEntry, error)
	queueEntry      func(string) (models.QueueEntry, error)
	markServed      func(int64) error
	allStaff        func() ([]models.Staff, error)
	users           func() ([]models.User, error)
	createUser      func(models.CreateUserInput) (string, error)
	filterReport    func(models.ReportFilter) ([]models.QueueEntry, error)
	downloadReport  func(models.ReportFilter) ([]byte, error)
}

func (f *fakeBackend) Login(ctx context.Context, in models.LoginInput) (models.LoginResult, error) {
	if f.login == nil {
		return models.LoginResult{}, nil
	}
	return f.login(in)
}

func (f *fakeBackend) ForgotPassword(ctx context.Context, email string) (string, error) {
	if f.forgotPassword == nil {
		return "", nil
	}
	return f.forgotPassword(email)
}

func (f *fakeBackend) ResetPassword(ctx context.Context, in models.ResetPasswordInput) (string, error) {
	if f.resetPassword == nil {
		return "", nil
	}
	return f.resetPassword(in)
}

func (f *fakeBackend) ChangePassword(ctx context.Context, role session.Role, in models.ChangePasswordInput) (string, error) {
	if f.changePassword == nil {
		return "", nil
	}
	return f.changePassword(role, in)
}

func (f *fakeBackend) AdminCounters(ctx context.Context) ([]models.Counter, error) {
	if f.adminCounters == nil {
		return nil, nil
	}
	return f.adminCounters()
}

func (f *fakeBackend) CreateCounter(ctx context.Context, in models.CreateCounterInput) (models.Counter, error) {
	if f.createCounter == nil {
		return models.Counter{}, nil
	}
	return f.createCounter(in)
}

func (f *fakeBackend) DeleteCounter(ctx context.Context, id int64) error {
	if f.deleteCounter == nil {
		return nil
	}
	return f.deleteCounter(id)
}

func (f *fakeBackend) AssignStaff(ctx context.Context, counterID, staffID int64) (models.Counter, error) {
	if f.assignStaff == nil {
		return models.Counter{}, nil
	}
	return f.assignStaff(counterID, staffID)
}

func (f *fakeBackend) AssignedCounter(ctx context.Context) (*models.Counter, error) {
	if f.assignedCounter == nil {
		return nil, nil
	}
	return f.assignedCounter()
}

func (f *fakeBackend) PublicCounters(ctx context.Context) ([]models.Counter, error) {
	if f.publicCounters == nil {
		return nil, nil
	}
	return f.publicCounters()
}

func (f *fakeBackend) AllQueues(ctx context.Context) ([]models.QueueEntry, error) {
	if f.allQueues == nil {
		return nil, nil
	}
	return f.allQueues()
}

func (f *fakeBackend) QueueByCounter(ctx context.Context, id int64) ([]models.QueueEntry, error) {
	if f.queueByCounter == nil {
		return nil, nil
	}
	return f.queueByCounter(id)
}

func (f *fakeBackend) JoinQueue(ctx context.Context, in models.JoinQueueInput) (models.QueueEntry, error) {
	if f.joinQueue == nil {
		return models.QueueEntry{}, nil
	}
	return f.joinQueue(in)
}

func (f *fakeBackend) QueueEntry(ctx context.Context, id string) (models.QueueEntry, error) {
	if f.queueEntry == nil {
		return models.QueueEntry{}, nil
	}
	return f.queueEntry(id)
}

func (f *fakeBackend) MarkServed(ctx context.Context, id int64) error {
	if f.markServed == nil {
		return nil
	}
	return f.markServed(id)
}

func (f *fakeBackend) AllStaff(ctx context.Context) ([]models.Staff, error) {
	if f.allStaff == nil {
		return nil, nil
	}
	return f.allStaff()
}

func (f *fakeBackend) Users(ctx context.Context) ([]models.User, error) {
	if f.users == nil {
		return nil, nil
	}
	return f.users()
}

func (f *fakeBackend) CreateUser(ctx context.Context, in models.CreateUserInput) (string, error) {
	if f.createUser == nil {
		return "", nil
	}
	return f.createUser(in)
}

func (f *fakeBackend) FilterReport(ctx context.Context, filter models.ReportFilter) ([]models.QueueEntry, error) {
	if f.filterReport == nil {
		return nil, nil
	}
	return f.filterReport(filter)
}

func (f *fakeBackend) DownloadReport(ctx context.Context, filter models.ReportFilter) ([]byte, error) {
	if f.downloadReport == nil {
		return []byte{}, nil
	}
	return f.downloadReport(filter)
}

func signToken(t *testing.T, subject, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": subject, "role": role}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func restoredStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(credstore.NewMemory(), nil)
	store.RestoreOnLoad(context.Background())
	return store
}

func loggedInStore(t *testing.T, username, role string) *session.Store {
	t.Helper()
	store := restoredStore(t)
	if _, ok := store.SetFromCredential(context.Background(), signToken(t, username, role, time.Now().Add(time.Hour))); !ok {
		t.Fatalf("failed to log in %s", username)
	}
	return store
}

func typeText(v View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(v View, keyType tea.KeyType) tea.Cmd {
	return v.Update(tea.KeyMsg{Type: keyType})
}

func pressRune(v View, r rune) tea.Cmd {
	return v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}
