package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scholarhelp/core/grade"
	"github.com/trezcool/scholarhelp/core/user"
)

type userRow struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	UsernameKey  string     `db:"username_key"`
	PasswordHash []byte     `db:"password_hash"`
	Grade        null.Int16 `db:"grade"`
	IsHelper     bool       `db:"is_helper"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const (
	userColumns = `id, username, username_key, password_hash, grade, is_helper, created_at, updated_at`

	queryAllUsers = `SELECT ` + userColumns + ` FROM users ORDER BY seq`

	insertUser = `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :username, :username_key, :password_hash, :grade, :is_helper, :created_at, :updated_at)`

	updateUser = `UPDATE users SET
			username = :username,
			username_key = :username_key,
			password_hash = :password_hash,
			grade = :grade,
			is_helper = :is_helper,
			updated_at = :updated_at
		WHERE id = :id`
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func toRow(usr user.User) userRow {
	row := userRow{
		ID:           usr.ID,
		Username:     usr.Username,
		UsernameKey:  user.UsernameKey(usr.Username),
		PasswordHash: usr.PasswordHash,
		IsHelper:     usr.IsHelper,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
	}
	if c, ok := usr.Grade.Class(); ok {
		row.Grade = null.Int16From(int16(c))
	}
	return row
}

func fromRow(row userRow) (user.User, error) {
	g := user.NoGrade()
	if row.Grade.Valid {
		var err error
		if g, err = user.GradeOf(grade.Class(row.Grade.Int16)); err != nil {
			return user.User{}, errors.Wrapf(err, "user %s", row.ID)
		}
	}
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Grade:        g,
		IsHelper:     row.IsHelper,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, queryAllUsers); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertUser, toRow(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) CreateUsers(ctx context.Context, users []user.User) ([]user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	for _, usr := range users {
		if _, err := tx.NamedExecContext(ctx, insertUser, toRow(usr)); err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrapf(err, "inserting user %s", usr.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.NamedExecContext(ctx, updateUser, toRow(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
