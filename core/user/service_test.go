package user

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/grade"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var errBoom = errors.New("disk on fire")

// mockRepo is an in-memory Repository whose writes can be made to fail.
type mockRepo struct {
	mu        sync.Mutex
	users     []User
	failQuery bool
	failWrite bool
	writes    int
}

func (r *mockRepo) QueryAllUsers(context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failQuery {
		return nil, errBoom
	}
	return append([]User(nil), r.users...), nil
}

func (r *mockRepo) CreateUser(_ context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return User{}, errBoom
	}
	r.writes++
	r.users = append(r.users, usr)
	return usr, nil
}

func (r *mockRepo) CreateUsers(_ context.Context, users []User) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return nil, errBoom
	}
	r.writes++
	r.users = append(r.users, users...)
	return users, nil
}

func (r *mockRepo) UpdateUser(_ context.Context, usr User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return User{}, errBoom
	}
	r.writes++
	for i := range r.users {
		if r.users[i].ID == usr.ID {
			r.users[i] = usr
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func newTestService(t *testing.T, repo *mockRepo) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), repo, nopLogger{})
	require.NoError(t, err)
	return svc
}

func usernames(users []User) []string {
	names := make([]string, 0, len(users))
	for _, usr := range users {
		names = append(names, usr.Username)
	}
	return names
}

func TestNewService_Seeds(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	svc := newTestService(t, repo)

	users := svc.QueryAll(ctx)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"ivanovich", "alets", "daniel"}, usernames(users))
	assert.Len(t, repo.users, 3)

	tests := []struct {
		isHelper bool
		class    grade.Class
	}{
		{isHelper: true, class: grade.A},
		{isHelper: false, class: grade.D},
		{isHelper: false, class: grade.F},
	}
	for i, tt := range tests {
		usr := users[i]
		c, ok := usr.Grade.Class()
		assert.True(t, ok, usr.Username)
		assert.Equal(t, tt.class, c, usr.Username)
		assert.Equal(t, tt.isHelper, usr.IsHelper, usr.Username)
		assert.NoError(t, usr.CheckPassword(SamplePassword), usr.Username)
		assert.NotEmpty(t, usr.ID)
	}

	// loading an existing directory does not seed again
	again := newTestService(t, repo)
	assert.Len(t, again.QueryAll(ctx), 3)
	assert.Len(t, repo.users, 3)
}

func TestNewService_StoreFailure(t *testing.T) {
	_, err := NewService(context.Background(), &mockRepo{failQuery: true}, nopLogger{})
	assert.True(t, errors.Is(err, core.ErrRecordStore))
	assert.True(t, errors.Is(err, errBoom))

	_, err = NewService(context.Background(), &mockRepo{failWrite: true}, nopLogger{})
	assert.True(t, errors.Is(err, core.ErrRecordStore))
}

func TestNewService_SeedAfterFailedStart(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{failWrite: true}

	_, err := NewService(ctx, repo, nopLogger{})
	require.True(t, errors.Is(err, core.ErrRecordStore))
	assert.Empty(t, repo.users)

	repo.failWrite = false
	svc := newTestService(t, repo)
	assert.Equal(t, []string{"ivanovich", "alets", "daniel"}, usernames(svc.QueryAll(ctx)))
	assert.Len(t, repo.users, 3)
	assert.Equal(t, 1, repo.writes)
}

func TestUsernameKey(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{a: "Alice", b: " alice ", same: true},
		{a: "STRASSE", b: "straße", same: true},
		{a: "\u212Aate", b: "kate", same: true}, // Kelvin sign
		{a: "alice", b: "alicia", same: false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.same, UsernameKey(tt.a) == UsernameKey(tt.b))
		})
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockRepo{})

	alice, err := svc.Register(ctx, NewUser{Username: "Alice", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Username)
	assert.False(t, alice.Grade.IsSet())
	assert.False(t, alice.IsHelper)
	assert.NotEqual(t, []byte("x"), alice.PasswordHash)

	_, err = svc.Register(ctx, NewUser{Username: "STRASSE", Password: "x"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		nu      NewUser
		wantErr error
		wantFld string
	}{
		{name: "case-insensitive clash", nu: NewUser{Username: "alice", Password: "y"}, wantErr: ErrUsernameTaken, wantFld: "username"},
		{name: "trimmed clash", nu: NewUser{Username: "  ALICE ", Password: "y"}, wantErr: ErrUsernameTaken, wantFld: "username"},
		{name: "seeded clash", nu: NewUser{Username: "Daniel", Password: "y"}, wantErr: ErrUsernameTaken, wantFld: "username"},
		{name: "case-folded clash", nu: NewUser{Username: "straße", Password: "y"}, wantErr: ErrUsernameTaken, wantFld: "username"},
		{name: "blank username", nu: NewUser{Username: "   ", Password: "y"}, wantFld: "username"},
		{name: "blank password", nu: NewUser{Username: "bob"}, wantFld: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.nu)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.wantFld, vErr.Fields[0].Field)
		})
	}

	assert.Len(t, svc.QueryAll(ctx), 5)
}

func TestService_FindByCredential(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockRepo{})
	alice, err := svc.Register(ctx, NewUser{Username: "Alice", Password: "x"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "exact", username: "Alice", password: "x"},
		{name: "trimmed & case-insensitive", username: "  Alice ", password: "x"},
		{name: "lower", username: "alice", password: "x"},
		{name: "password case-sensitive", username: "Alice", password: "X", wantErr: ErrInvalidCredentials},
		{name: "password untrimmed", username: "Alice", password: " x", wantErr: ErrInvalidCredentials},
		{name: "unknown", username: "bob", password: "x", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.FindByCredential(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, usr.ID)
		})
	}
}

func TestService_Filters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockRepo{})

	bob, err := svc.Register(ctx, NewUser{Username: "bob", Password: "x"}) // no grade
	require.NoError(t, err)
	carl, err := svc.Register(ctx, NewUser{Username: "carl", Password: "x"})
	require.NoError(t, err)
	_, err = svc.UpdateGrade(ctx, carl.ID, grade.C)
	require.NoError(t, err)
	_, err = svc.SetHelperFlag(ctx, bob.ID, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"ivanovich", "bob"}, usernames(svc.ListHelpers(ctx)))
	assert.Equal(t, []string{"alets", "daniel"}, usernames(svc.ListNeedingHelp(ctx)))

	for _, usr := range svc.ListHelpers(ctx) {
		assert.True(t, usr.IsHelper)
	}
	for _, usr := range svc.ListNeedingHelp(ctx) {
		c, ok := usr.Grade.Class()
		assert.True(t, ok)
		assert.GreaterOrEqual(t, int(c), 3)
	}
}

func TestService_UpdateGrade(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockRepo{})
	bob, err := svc.Register(ctx, NewUser{Username: "bob", Password: "x"})
	require.NoError(t, err)

	usr, err := svc.UpdateGrade(ctx, bob.ID, grade.F)
	require.NoError(t, err)
	c, ok := usr.Grade.Class()
	assert.True(t, ok)
	assert.Equal(t, grade.F, c)
	assert.Contains(t, usernames(svc.ListNeedingHelp(ctx)), "bob")

	_, err = svc.UpdateGrade(ctx, bob.ID, grade.Class(5))
	assert.Equal(t, ErrInvalidGrade, err)
	_, err = svc.UpdateGrade(ctx, bob.ID, grade.Unknown)
	assert.Equal(t, ErrInvalidGrade, err)
	_, err = svc.UpdateGrade(ctx, "nope", grade.A)
	assert.Equal(t, ErrNotFound, err)

	got, err := svc.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.Grade, got.Grade)
}

func TestService_StoreFailureLeavesDirectoryUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	svc := newTestService(t, repo)
	before := svc.QueryAll(ctx)
	alets, err := svc.GetByUsername(ctx, "alets")
	require.NoError(t, err)

	repo.failWrite = true
	_, err = svc.Register(ctx, NewUser{Username: "bob", Password: "x"})
	assert.True(t, errors.Is(err, core.ErrRecordStore))
	_, err = svc.UpdateGrade(ctx, alets.ID, grade.A)
	assert.True(t, errors.Is(err, core.ErrRecordStore))
	_, err = svc.SetHelperFlag(ctx, alets.ID, true)
	assert.True(t, errors.Is(err, core.ErrRecordStore))
	_, err = svc.ResetPassword(ctx, alets.ID, "newpass")
	assert.True(t, errors.Is(err, core.ErrRecordStore))

	assert.Equal(t, before, svc.QueryAll(ctx))
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockRepo{})
	daniel, err := svc.GetByUsername(ctx, " DANIEL")
	require.NoError(t, err)

	_, err = svc.ResetPassword(ctx, daniel.ID, "")
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr))

	_, err = svc.ResetPassword(ctx, daniel.ID, "n3w-pass")
	require.NoError(t, err)
	_, err = svc.FindByCredential(ctx, "daniel", SamplePassword)
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = svc.FindByCredential(ctx, "daniel", "n3w-pass")
	assert.NoError(t, err)
}

func TestGrade_JSON(t *testing.T) {
	tests := []struct {
		name string
		g    Grade
		want string
	}{
		{name: "no grade", g: NoGrade(), want: `{"grade":null}`},
		{name: "A", g: mustGrade(t, grade.A), want: `{"grade":0}`},
		{name: "F", g: mustGrade(t, grade.F), want: `{"grade":4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(struct {
				Grade Grade `json:"grade"`
			}{tt.g})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}

	var g Grade
	assert.Error(t, json.Unmarshal([]byte("7"), &g))
	require.NoError(t, json.Unmarshal([]byte("3"), &g))
	assert.True(t, g.NeedsHelp())
	require.NoError(t, json.Unmarshal([]byte("null"), &g))
	assert.False(t, g.IsSet())
	assert.False(t, g.NeedsHelp())
}

func mustGrade(t *testing.T, c grade.Class) Grade {
	t.Helper()
	g, err := GradeOf(c)
	require.NoError(t, err)
	return g
}
