package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core/user"
)

var errDuplicateID = errors.New("duplicate user id")

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		users = append(users, *repo.db.table[id])
	}
	return users, nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[usr.ID]; ok {
		return user.User{}, errors.Wrap(errDuplicateID, usr.ID)
	}
	repo.db.table[usr.ID] = &usr
	repo.db.order = append(repo.db.order, usr.ID)
	return usr, nil
}

func (repo *userRepository) CreateUsers(_ context.Context, users []user.User) ([]user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	seen := make(map[string]bool, len(users))
	for _, usr := range users {
		if _, ok := repo.db.table[usr.ID]; ok || seen[usr.ID] {
			return nil, errors.Wrap(errDuplicateID, usr.ID)
		}
		seen[usr.ID] = true
	}
	for i := range users {
		usr := users[i]
		repo.db.table[usr.ID] = &usr
		repo.db.order = append(repo.db.order, usr.ID)
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.table[usr.ID] = &usr
	return usr, nil
}
