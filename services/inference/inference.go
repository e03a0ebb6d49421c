// Package inference provides the grade classifiers the assessment service can score profiles with.
package inference

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core"
	"github.com/trezcool/scholarhelp/core/assessment"
	"github.com/trezcool/scholarhelp/core/profile"
)

// Model kinds
const (
	KindLinear = "linear"
	KindRemote = "remote"
)

var (
	_ assessment.Predictor = (*LinearModel)(nil)
	_ assessment.Predictor = (*RemoteScorer)(nil)
	_ assessment.Predictor = safePredictor{}
)

// New returns the predictor selected by conf.Model.Kind, wrapped with Safe.
func New(conf *core.Config) (assessment.Predictor, error) {
	switch conf.Model.Kind {
	case "", KindLinear:
		if conf.Model.Path == "" {
			return Safe(DefaultLinearModel()), nil
		}
		m, err := LoadLinearModel(conf.Model.Path)
		if err != nil {
			return nil, err
		}
		return Safe(m), nil
	case KindRemote:
		if conf.Model.URL == "" {
			return nil, errors.New("model.url is required for the remote model")
		}
		return Safe(NewRemoteScorer(conf.Model.URL, conf.Model.Timeout)), nil
	default:
		return nil, errors.Errorf("unknown model kind %q", conf.Model.Kind)
	}
}

type safePredictor struct {
	p assessment.Predictor
}

// Safe turns panics of p into errors.
func Safe(p assessment.Predictor) assessment.Predictor {
	if sp, ok := p.(safePredictor); ok {
		return sp
	}
	return safePredictor{p: p}
}

func (sp safePredictor) Predict(ctx context.Context, feats profile.Features) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, errors.Errorf("predictor panicked: %v", r)
		}
	}()
	return sp.p.Predict(ctx, feats)
}
