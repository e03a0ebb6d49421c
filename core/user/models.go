package user

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/grade"
)

// Grade is either no grade at all or one of the classes A..F.
// The zero value is NoGrade.
type Grade struct {
	class grade.Class
	set   bool
}

func NoGrade() Grade { return Grade{} }

// GradeOf returns the Grade holding c. c must be one of A..F.
func GradeOf(c grade.Class) (Grade, error) {
	if !c.Valid() {
		return Grade{}, ErrInvalidGrade
	}
	return Grade{class: c, set: true}, nil
}

// Class returns the grade class, ok is false for NoGrade.
func (g Grade) Class() (c grade.Class, ok bool) {
	if !g.set {
		return grade.Unknown, false
	}
	return g.class, true
}

func (g Grade) IsSet() bool { return g.set }

// NeedsHelp reports whether the grade is set and D or worse.
func (g Grade) NeedsHelp() bool {
	return g.set && g.class >= grade.D
}

func (g Grade) String() string {
	if !g.set {
		return "none"
	}
	return g.class.String()
}

func (g Grade) MarshalJSON() ([]byte, error) {
	if !g.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(g.class))), nil
}

func (g *Grade) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*g = NoGrade()
		return nil
	}
	var c int
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	parsed, err := GradeOf(grade.Class(c))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Grade        Grade     `json:"grade"`
	IsHelper     bool      `json:"is_helper"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// UsernameKey is the form under which usernames are compared for equality, by the directory and the SQL stores alike:
// trimmed and Unicode case folded.
func UsernameKey(uname string) string {
	return cases.Fold().String(core.CleanString(uname))
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,max=150,alphanum_"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Validate applies the registration rules of the public surfaces (HTTP, CLI).
// Username uniqueness is checked by Service.Register.
func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username)
	return validate.Struct(nu)
}

// PasswordReset holds a new password typed by an admin.
type PasswordReset struct {
	Username        string `json:"-"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (pr PasswordReset) Validate(validate *validator.Validate) error { return validate.Struct(pr) }
