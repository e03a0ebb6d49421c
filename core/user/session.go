package user

import (
	"context"
	"sync"

	"github.com/trezcool/scholarhelp/core/grade"
)

// Session references the current user of one client by id. The directory keeps owning the record.
type Session struct {
	svc *Service

	mu     sync.Mutex
	userID string
}

// NewSession returns a session without current user.
func (svc *Service) NewSession() *Session {
	return &Session{svc: svc}
}

// RestoreSession returns a session whose current user is the user with the given id.
func (svc *Service) RestoreSession(ctx context.Context, id string) (*Session, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Session{svc: svc, userID: usr.ID}, nil
}

func (s *Session) setCurrent(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

func (s *Session) currentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Login makes the user matching the credentials the current user.
func (s *Session) Login(ctx context.Context, username, password string) (User, error) {
	usr, err := s.svc.FindByCredential(ctx, username, password)
	if err != nil {
		return User{}, err
	}
	s.setCurrent(usr.ID)
	return usr, nil
}

// Register registers a new user and makes it the current user.
func (s *Session) Register(ctx context.Context, nu NewUser) (User, error) {
	usr, err := s.svc.Register(ctx, nu)
	if err != nil {
		return User{}, err
	}
	s.setCurrent(usr.ID)
	return usr, nil
}

// Current returns the up to date record of the current user.
func (s *Session) Current(ctx context.Context) (User, bool) {
	id := s.currentID()
	if id == "" {
		return User{}, false
	}
	usr, err := s.svc.GetByID(ctx, id)
	if err != nil {
		return User{}, false
	}
	return usr, true
}

func (s *Session) Logout() { s.setCurrent("") }

// UpdateGrade records the grade of the current user. It does nothing when nobody is logged in.
func (s *Session) UpdateGrade(ctx context.Context, class grade.Class) error {
	id := s.currentID()
	if id == "" {
		return nil
	}
	_, err := s.svc.UpdateGrade(ctx, id, class)
	return err
}

// SetHelperFlag sets the helper flag of the current user. It does nothing when nobody is logged in.
func (s *Session) SetHelperFlag(ctx context.Context, isHelper bool) error {
	id := s.currentID()
	if id == "" {
		return nil
	}
	_, err := s.svc.SetHelperFlag(ctx, id, isHelper)
	return err
}
