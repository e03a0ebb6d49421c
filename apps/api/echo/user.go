package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/user"
)

type userApi struct {
	svc      *user.Service
	auth     *auth
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, authn *auth, svc *user.Service, validate *validator.Validate) {
	api := userApi{
		svc:      svc,
		auth:     authn,
		validate: validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.PUT("/me/helper", api.setHelper)
	ag.GET("/helpers", api.helpers)
	ag.GET("/needing-help", api.needingHelp)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.NewSession().Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	token, err := api.auth.generateToken(api.auth.userClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusCreated, RegisterResponse{User: usr, Token: token})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.NewSession().Login(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.generateToken(api.auth.userClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := api.auth.currentUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) setHelper(ctx echo.Context) error {
	var data HelperRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HelperRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	sess, err := api.auth.session(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	if err := sess.SetHelperFlag(ctx.Request().Context(), *data.IsHelper); err != nil {
		return errors.Wrap(err, "setting helper flag")
	}

	usr, err := api.auth.currentUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) helpers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ListHelpers(ctx.Request().Context()))
}

func (api *userApi) needingHelp(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ListNeedingHelp(ctx.Request().Context()))
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	RegisterResponse struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}

	HelperRequest struct {
		IsHelper *bool `json:"is_helper" validate:"required"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username)
	return validate.Struct(lr)
}
