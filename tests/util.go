package testutil

import (
	"context"
	"testing"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/grade"
	"github.com/trezcool/scholarhelp/core/user"
	inmemdb "github.com/trezcool/scholarhelp/storage/database/inmem"
)

// NopLogger discards everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// NewUserService returns a seeded user directory backed by a fresh in-memory store.
func NewUserService(t *testing.T) *user.Service {
	t.Helper()
	svc, err := user.NewService(context.Background(), inmemdb.NewUserRepository(inmemdb.Open()), NopLogger{})
	if err != nil {
		t.Fatalf("NewUserService() failed: %v", err)
	}
	return svc
}

// CreateUser registers a user and optionally grades it (a negative class leaves it without grade).
func CreateUser(t *testing.T, svc *user.Service, uname, pwd string, class grade.Class, isHelper bool) user.User {
	t.Helper()
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Username: uname, Password: pwd})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if class.Valid() {
		if usr, err = svc.UpdateGrade(ctx, usr.ID, class); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	if isHelper {
		if usr, err = svc.SetHelperFlag(ctx, usr.ID, true); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	return usr
}
