package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/grade"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidGrade       = errors.New("grade must be one of A, B, C, D or F")

	requiredText = "this field is required"
)

// SamplePassword is the password of the seeded sample users.
const SamplePassword = "test123"

type sample struct {
	username string
	isHelper bool
	class    grade.Class
}

// seeded when the record store is empty
var samples = []sample{
	{username: "ivanovich", isHelper: true, class: grade.A},
	{username: "alets", class: grade.D},
	{username: "daniel", class: grade.F},
}

// Repository is the durable record store behind the directory.
type Repository interface {
	QueryAllUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, usr User) (User, error)
	// CreateUsers stores all of users or none of them.
	CreateUsers(ctx context.Context, users []User) ([]User, error)
	UpdateUser(ctx context.Context, usr User) (User, error)
}

// Service is the user directory: an ordered in-memory list of users, flushed to a Repository on every mutation.
type Service struct {
	repo  Repository
	log   core.Logger
	mu    sync.RWMutex
	users []User

	nowFunc func() time.Time
}

// NewService loads the directory from repo and seeds the sample users if it is empty.
func NewService(ctx context.Context, repo Repository, logger core.Logger) (*Service, error) {
	svc := &Service{repo: repo, log: logger, nowFunc: time.Now}

	users, err := repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, core.NewStoreError("loading users", err)
	}
	svc.users = users

	if len(svc.users) == 0 {
		if err := svc.seed(ctx); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// seed stores the sample users in one batch, so that a failed start leaves the store empty and the next one seeds again.
func (svc *Service) seed(ctx context.Context) error {
	users := make([]User, 0, len(samples))
	for _, s := range samples {
		g, err := GradeOf(s.class)
		if err != nil {
			return err
		}
		usr, err := svc.newUser(s.username, SamplePassword)
		if err != nil {
			return err
		}
		usr.Grade = g
		usr.IsHelper = s.isHelper
		users = append(users, usr)
	}

	users, err := svc.repo.CreateUsers(ctx, users)
	if err != nil {
		return core.NewStoreError("seeding users", err)
	}
	svc.users = append(svc.users, users...)
	svc.log.Info("seeded sample users", map[string]interface{}{"count": len(users)})
	return nil
}

func (svc *Service) newUser(uname, pwd string) (User, error) {
	now := svc.nowFunc().UTC()
	usr := User{
		ID:        uuid.New().String(),
		Username:  uname,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return usr, nil
}

// index returns the position of the user with the given id, or -1. svc.mu must be held.
func (svc *Service) index(id string) int {
	for i, usr := range svc.users {
		if usr.ID == id {
			return i
		}
	}
	return -1
}

// FindByCredential returns the first user whose username matches (trimmed, case-insensitive) and whose password
// matches exactly.
func (svc *Service) FindByCredential(_ context.Context, username, password string) (User, error) {
	key := UsernameKey(username)

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, usr := range svc.users {
		if UsernameKey(usr.Username) == key && usr.CheckPassword(password) == nil {
			return usr, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

// Register appends a new user without grade and not helping.
// A username matching an existing one case-insensitively fails with ErrUsernameTaken.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	uname := core.CleanString(nu.Username)

	var flds []core.FieldError
	if uname == "" {
		flds = append(flds, core.FieldError{Field: "username", Error: requiredText})
	}
	if nu.Password == "" {
		flds = append(flds, core.FieldError{Field: "password", Error: requiredText})
	}
	if len(flds) > 0 {
		return User{}, core.NewValidationError(nil, flds...)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	key := UsernameKey(uname)
	for _, usr := range svc.users {
		if UsernameKey(usr.Username) == key {
			return User{}, core.NewValidationError(
				ErrUsernameTaken,
				core.FieldError{Field: "username", Error: ErrUsernameTaken.Error()},
			)
		}
	}

	usr, err := svc.newUser(uname, nu.Password)
	if err != nil {
		return User{}, err
	}
	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, core.NewStoreError("creating user", err)
	}
	svc.users = append(svc.users, usr)
	return usr, nil
}

// update applies fn to a copy of the user, persists it, and only then replaces the in-memory record.
func (svc *Service) update(ctx context.Context, op, id string, fn func(usr *User) error) (User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	idx := svc.index(id)
	if idx < 0 {
		return User{}, ErrNotFound
	}
	usr := svc.users[idx]
	if err := fn(&usr); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = svc.nowFunc().UTC()

	saved, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, core.NewStoreError(op, err)
	}
	svc.users[idx] = saved
	return saved, nil
}

// UpdateGrade overwrites the grade of the user. class must be one of A..F.
func (svc *Service) UpdateGrade(ctx context.Context, id string, class grade.Class) (User, error) {
	g, err := GradeOf(class)
	if err != nil {
		return User{}, err
	}
	return svc.update(ctx, "updating grade", id, func(usr *User) error {
		usr.Grade = g
		return nil
	})
}

func (svc *Service) SetHelperFlag(ctx context.Context, id string, isHelper bool) (User, error) {
	return svc.update(ctx, "setting helper flag", id, func(usr *User) error {
		usr.IsHelper = isHelper
		return nil
	})
}

func (svc *Service) ResetPassword(ctx context.Context, id, pwd string) (User, error) {
	if pwd == "" {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: requiredText})
	}
	return svc.update(ctx, "resetting password", id, func(usr *User) error {
		return errors.Wrap(usr.SetPassword(pwd), "hashing password")
	})
}

func (svc *Service) GetByID(_ context.Context, id string) (User, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if idx := svc.index(id); idx >= 0 {
		return svc.users[idx], nil
	}
	return User{}, ErrNotFound
}

// GetByUsername looks a user up by username, ignoring case and surrounding whitespace.
func (svc *Service) GetByUsername(_ context.Context, username string) (User, error) {
	key := UsernameKey(username)

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	for _, usr := range svc.users {
		if UsernameKey(usr.Username) == key {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

// QueryAll returns every user in directory order.
func (svc *Service) QueryAll(_ context.Context) []User {
	return svc.filter(func(User) bool { return true })
}

// ListHelpers returns the users flagged as helpers, in directory order.
func (svc *Service) ListHelpers(_ context.Context) []User {
	return svc.filter(func(usr User) bool { return usr.IsHelper })
}

// ListNeedingHelp returns the users graded D or F, in directory order. Users without grade are excluded.
func (svc *Service) ListNeedingHelp(_ context.Context) []User {
	return svc.filter(func(usr User) bool { return usr.Grade.NeedsHelp() })
}

func (svc *Service) filter(keep func(User) bool) []User {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	users := make([]User, 0, len(svc.users))
	for _, usr := range svc.users {
		if keep(usr) {
			users = append(users, usr)
		}
	}
	return users
}
