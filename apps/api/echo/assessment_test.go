package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scholarhelp/core/grade"
	"github.com/trezcool/scholarhelp/core/profile"
	"github.com/trezcool/scholarhelp/core/user"
)

func validProfile() profile.Profile {
	return profile.Profile{
		Age:               17,
		Ethnicity:         1,
		ParentalEducation: 2,
		StudyTimeWeekly:   12.5,
		Absences:          3,
		ParentalSupport:   3,
		Sports:            true,
		GPA:               3.1,
	}
}

type assessResponse struct {
	Score          float64              `json:"score"`
	Class          grade.Class          `json:"class"`
	Interpretation grade.Interpretation `json:"interpretation"`
	Recorded       bool                 `json:"recorded"`
	Peers          []user.User          `json:"peers"`
}

func Test_assessmentApi_assess(t *testing.T) {
	app := setup(t, constantPredictor(1.2))
	daniel := app.getUser(t, "daniel")
	token := app.getToken(t, daniel)

	runHTTPTests(t, app, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/assessments",
			body: marchallObj(t, validProfile()), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", token, marchallObj(t, validProfile()))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res assessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1.2, res.Score)
	assert.Equal(t, grade.B, res.Class)
	assert.True(t, res.Recorded)
	assert.Equal(t, grade.Interpret(grade.B), res.Interpretation)
	assert.Equal(t, grade.RouteOfferHelp, res.Interpretation.PeerRoute)

	// daniel is no longer struggling, only alets is left needing help
	require.Len(t, res.Peers, 1)
	assert.Equal(t, "alets", res.Peers[0].Username)

	daniel = app.getUser(t, "daniel")
	c, ok := daniel.Grade.Class()
	assert.True(t, ok)
	assert.Equal(t, grade.B, c)
}

func Test_assessmentApi_assess_invalidInput(t *testing.T) {
	var called bool
	app := setup(t, predictorFunc(func(context.Context, profile.Features) (float64, error) {
		called = true
		return 0, nil
	}))
	token := app.getToken(t, app.getUser(t, "alets"))

	p := validProfile()
	p.Age = 9
	p.Absences = 51
	req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", token, marchallObj(t, p))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var fields map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.Len(t, fields, 2)
	assert.Equal(t, "age must be 10 or greater", fields["age"])
	assert.Contains(t, fields, "absences")
	assert.False(t, called)

	alets := app.getUser(t, "alets")
	c, _ := alets.Grade.Class()
	assert.Equal(t, grade.D, c)
}

func Test_assessmentApi_assess_inferenceFailure(t *testing.T) {
	app := setup(t, predictorFunc(func(context.Context, profile.Features) (float64, error) {
		return 0, errors.New("model unavailable")
	}))
	token := app.getToken(t, app.getUser(t, "daniel"))

	runHTTPTests(t, app, []httpTest{
		{
			name: "bad gateway", method: http.MethodPost, path: "/v1/assessments", token: token,
			body: marchallObj(t, validProfile()), wantCode: http.StatusBadGateway,
			wantData: marchallObj(t, httpErr{Error: "grade prediction failed, please try again later"}),
		},
	})

	daniel := app.getUser(t, "daniel")
	c, _ := daniel.Grade.Class()
	assert.Equal(t, grade.F, c)
}

func Test_assessmentApi_assess_unknownClass(t *testing.T) {
	app := setup(t, constantPredictor(7))
	token := app.getToken(t, app.getUser(t, "alets"))

	req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", token, marchallObj(t, validProfile()))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res assessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, grade.Class(7), res.Class)
	assert.Equal(t, "Unknown Performance", res.Interpretation.Title)
	assert.False(t, res.Recorded)

	alets := app.getUser(t, "alets")
	c, _ := alets.Grade.Class()
	assert.Equal(t, grade.D, c)
}

func Test_gradeApi_interpret(t *testing.T) {
	app := setup(t, constantPredictor(0))

	runHTTPTests(t, app, []httpTest{
		{name: "A", path: "/v1/grades/0", wantCode: http.StatusOK, wantData: marchallObj(t, grade.Interpret(grade.A))},
		{name: "F", path: "/v1/grades/4", wantCode: http.StatusOK, wantData: marchallObj(t, grade.Interpret(grade.F))},
		{name: "unknown", path: "/v1/grades/9", wantCode: http.StatusOK, wantData: marchallObj(t, grade.Interpret(grade.Class(9)))},
		{name: "negative", path: "/v1/grades/-1", wantCode: http.StatusOK, wantData: marchallObj(t, grade.Interpret(grade.Unknown))},
		{
			name: "not an integer", path: "/v1/grades/x", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class": "class must be an integer"}),
		},
	})
}
