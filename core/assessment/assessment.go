// Package assessment scores a student profile and records the resulting grade on the student's account.
package assessment

import (
	"context"
	"fmt"
	"math"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/grade"
	"github.com/trezcool/scholarhelp/core/profile"
	"github.com/trezcool/scholarhelp/core/user"
)

// ErrInferenceFailure is the cause of every error coming from the grade classifier.
var ErrInferenceFailure = errors.New("prediction failed")

// Predictor is the pre-trained grade classifier. It returns a raw grade class score.
type Predictor interface {
	Predict(ctx context.Context, feats profile.Features) (float64, error)
}

// Result is the outcome of one assessment.
type Result struct {
	Score          float64              `json:"score"`
	Class          grade.Class          `json:"class"`
	Interpretation grade.Interpretation `json:"interpretation"`
	Recorded       bool                 `json:"recorded"`
	Peers          []user.User          `json:"peers"`
}

type Service struct {
	predictor  Predictor
	users      *user.Service
	validate   *validator.Validate
	translator ut.Translator
	log        core.Logger
}

func NewService(
	predictor Predictor,
	users *user.Service,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *Service {
	return &Service{
		predictor:  predictor,
		users:      users,
		validate:   validate,
		translator: translator,
		log:        logger,
	}
}

// Assess normalizes p, scores it and interprets the grade.
// When the grade is one of A..F it is recorded on the session's current user, if any.
// Invalid input and classifier failures abort the run before anything is recorded.
func (svc *Service) Assess(ctx context.Context, sess *user.Session, p profile.Profile) (Result, error) {
	if sess == nil {
		sess = svc.users.NewSession()
	}
	feats, err := profile.Normalize(p, svc.validate, svc.translator)
	if err != nil {
		return Result{}, err
	}

	score, err := svc.predict(ctx, feats)
	if err != nil {
		return Result{}, err
	}
	class, err := grade.FromScore(score)
	if err != nil {
		return Result{}, errors.Wrap(ErrInferenceFailure, err.Error())
	}

	res := Result{
		Score:          score,
		Class:          class,
		Interpretation: grade.Interpret(class),
	}

	curr, loggedIn := sess.Current(ctx)
	if class.Valid() {
		if err := sess.UpdateGrade(ctx, class); err != nil {
			return Result{}, errors.Wrap(err, "recording grade")
		}
		res.Recorded = loggedIn
	} else {
		svc.log.Warn("classifier returned an unknown grade class", map[string]interface{}{"score": score})
	}

	res.Peers = svc.peers(ctx, res.Interpretation.PeerRoute, curr.ID)
	return res, nil
}

// predict calls the classifier, turning errors, panics and unusable scores into ErrInferenceFailure.
func (svc *Service) predict(ctx context.Context, feats profile.Features) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, errors.Wrap(ErrInferenceFailure, fmt.Sprintf("classifier panicked: %v", r))
		}
	}()

	score, err = svc.predictor.Predict(ctx, feats)
	if err != nil {
		svc.log.Error("grade prediction failed", err)
		return 0, errors.Wrap(ErrInferenceFailure, err.Error())
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, errors.Wrapf(ErrInferenceFailure, "unusable score %v", score)
	}
	return score, nil
}

// peers lists where the route points to, without the user with id exclID.
func (svc *Service) peers(ctx context.Context, route grade.PeerRoute, exclID string) []user.User {
	var users []user.User
	switch route {
	case grade.RouteOfferHelp:
		users = svc.users.ListNeedingHelp(ctx)
	default:
		users = svc.users.ListHelpers(ctx)
	}

	peers := make([]user.User, 0, len(users))
	for _, usr := range users {
		if usr.ID != exclID {
			peers = append(peers, usr)
		}
	}
	return peers
}
