package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/user"
)

const (
	contextTokenKey   = "userToken"
	contextSessionKey = "session"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
}

// auth issues and checks the JWTs of the API.
type auth struct {
	conf *core.Config
	svc  *user.Service
	now  func() time.Time
}

func newAuth(conf *core.Config, svc *user.Service) *auth {
	return &auth{conf: conf, svc: svc, now: time.Now}
}

// middleware returns the JWT auth middleware.
func (a *auth) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(a.conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	})
}

func (a *auth) userClaims(usr user.User, origIat ...int64) *Claims {
	now := a.now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(a.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
	}
}

// generateToken generates a signed JWT token string representing the user Claims.
func (a *auth) generateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(a.conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// GenerateToken returns a fresh token for usr, signed with the secret key of conf.
func GenerateToken(conf *core.Config, usr user.User) (string, error) {
	a := newAuth(conf, nil)
	return a.generateToken(a.userClaims(usr))
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// session returns the session of the token's user, restoring it on first use.
func (a *auth) session(ctx echo.Context) (*user.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(*user.Session); ok {
		return sess, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := a.svc.RestoreSession(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, errUnauthorized
		}
		return nil, errors.Wrap(err, "restoring session")
	}
	ctx.Set(contextSessionKey, sess)
	return sess, nil
}

// currentUser returns the up to date record of the token's user.
func (a *auth) currentUser(ctx echo.Context) (user.User, error) {
	sess, err := a.session(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, ok := sess.Current(ctx.Request().Context())
	if !ok {
		return user.User{}, errUnauthorized
	}
	return usr, nil
}

func (a *auth) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	usr, err := a.currentUser(ctx)
	if err != nil {
		return "", err
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if a.now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := a.generateToken(a.userClaims(usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
