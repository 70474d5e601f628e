package auth_test

import (
	"context"
	"sync"
	"testing"

	auth "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func assertTextCode(t *testing.T, err error, textCode string) {
	t.Helper()
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr), "expected a rich error, got %T: %v", err, err)
	require.Equal(t, textCode, richErr.TextCode)
}

func mustUUID(t *testing.T, seed string) uuid.UUID {
	t.Helper()
	id, err := hashid.NewUUID(seed)
	require.NoError(t, err)
	return id
}

// MockUserStore implements auth.UserStore for testing
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if created, ok := args.Get(0).(*auth.User); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// noopTestLogger swallows everything so tests stay quiet.
type noopTestLogger struct{}

func (noopTestLogger) Debug(string, ...any) {}
func (noopTestLogger) Info(string, ...any)  {}
func (noopTestLogger) Warn(string, ...any)  {}
func (noopTestLogger) Error(string, ...any) {}

// recorderMailer captures outbound messages for assertions.
type recorderMailer struct {
	mu       sync.Mutex
	messages []auth.Message
	fail     error
}

func (r *recorderMailer) Send(_ context.Context, msg auth.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recorderMailer) last() (auth.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return auth.Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// failingCache always errors to exercise the cache-fault tolerance path.
type failingCache struct {
	err error
}

func (f failingCache) Set(context.Context, string, *auth.SessionObject) error { return f.err }
func (f failingCache) Get(context.Context, string) (*auth.SessionObject, error) {
	return nil, f.err
}
func (f failingCache) Delete(context.Context, string) error { return f.err }

// fakeUserStore is an in-memory auth.UserStore for flow tests where
// registration needs to actually persist.
type fakeUserStore struct {
	mu          sync.Mutex
	byEmail     map[string]*auth.User
	registerErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*auth.User{}}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.byEmail[auth.NormalizeEmail(email)]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byEmail {
		if user.ID.String() == id {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeUserStore) Register(_ context.Context, user *auth.User) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	email := auth.NormalizeEmail(user.Email)
	if _, ok := f.byEmail[email]; ok {
		return nil, auth.ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		id, err := hashid.NewUUID(email)
		if err != nil {
			return nil, err
		}
		user.ID = id
	}
	f.byEmail[email] = user
	return user, nil
}
