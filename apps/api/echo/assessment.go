package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/assessment"
	"github.com/trezcool/scholarhelp/core/grade"
	"github.com/trezcool/scholarhelp/core/profile"
)

type assessmentApi struct {
	svc  *assessment.Service
	auth *auth
}

func registerAssessmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, authn *auth, svc *assessment.Service) {
	api := assessmentApi{svc: svc, auth: authn}
	g.POST("/assessments", api.assess, jwt)
}

func (api *assessmentApi) assess(ctx echo.Context) error {
	var data profile.Profile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Profile")
	}

	sess, err := api.auth.session(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context session")
	}
	res, err := api.svc.Assess(ctx.Request().Context(), sess, data)
	if err != nil {
		return errors.Wrap(err, "assessing profile")
	}
	return ctx.JSON(http.StatusOK, res)
}

func registerGradeAPI(g *echo.Group) {
	g.GET("/grades/:class", interpretGrade)
}

// interpretGrade returns the interpretation of any integer class; classes outside A..F get the unknown tier.
func interpretGrade(ctx echo.Context) error {
	c, err := strconv.Atoi(ctx.Param("class"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "class", Error: "class must be an integer"})
	}
	return ctx.JSON(http.StatusOK, grade.Interpret(grade.Class(c)))
}
