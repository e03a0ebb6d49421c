package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/trezcool/scholarhelp/apps/api/echo"
	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/assessment"
	"github.com/trezcool/scholarhelp/core/profile"
	"github.com/trezcool/scholarhelp/core/user"
	testutil "github.com/trezcool/scholarhelp/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// predictorFunc adapts a function to assessment.Predictor.
type predictorFunc func(ctx context.Context, feats profile.Features) (float64, error)

func (f predictorFunc) Predict(ctx context.Context, feats profile.Features) (float64, error) {
	return f(ctx, feats)
}

func constantPredictor(score float64) predictorFunc {
	return func(context.Context, profile.Features) (float64, error) { return score, nil }
}

type testApp struct {
	Server
	conf  *core.Config
	users *user.Service
}

func setup(t *testing.T, predictor assessment.Predictor) testApp {
	t.Helper()
	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "ScholarHelp",
		SecretKey: "s3cr3t",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	usrSvc := testutil.NewUserService(t)
	assessSvc := assessment.NewService(predictor, usrSvc, validate, translator, testutil.NopLogger{})

	srv := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NopLogger{},
		UserSvc:        usrSvc,
		AssessmentSvc:  assessSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return testApp{Server: srv, conf: conf, users: usrSvc}
}

func (app testApp) getUser(t *testing.T, uname string) user.User {
	t.Helper()
	usr, err := app.users.GetByUsername(context.Background(), uname)
	if err != nil {
		t.Fatalf("getUser(): %v", err)
	}
	return usr
}

func (app testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(app.conf, usr)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
