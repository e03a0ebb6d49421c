package inference

import (
	"context"
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/scholarhelp/core/profile"
)

//go:embed linear_model.yaml
var defaultLinearModel []byte

var errUnknownFeature = errors.New("unknown feature")

// LinearModel scores a profile as intercept + sum(weight * feature), optionally clamped to [min, max].
type LinearModel struct {
	intercept float64
	weights   profile.Features
	clamp     *[2]float64
}

type linearModelFile struct {
	Intercept float64            `yaml:"intercept"`
	Clamp     []float64          `yaml:"clamp"`
	Weights   map[string]float64 `yaml:"weights"`
}

// ParseLinearModel reads a YAML model. Weights of unknown features are rejected, missing ones are zero.
func ParseLinearModel(data []byte) (*LinearModel, error) {
	var file linearModelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parsing linear model")
	}

	m := &LinearModel{intercept: file.Intercept}
	for name, w := range file.Weights {
		if !profile.IsFeature(name) {
			return nil, errors.Wrap(errUnknownFeature, name)
		}
		for i, n := range profile.FeatureNames {
			if n == name {
				m.weights[i] = w
			}
		}
	}

	switch len(file.Clamp) {
	case 0:
	case 2:
		if file.Clamp[0] > file.Clamp[1] {
			return nil, errors.Errorf("invalid clamp range [%v, %v]", file.Clamp[0], file.Clamp[1])
		}
		m.clamp = &[2]float64{file.Clamp[0], file.Clamp[1]}
	default:
		return nil, errors.New("clamp must hold exactly 2 values")
	}
	return m, nil
}

// LoadLinearModel reads a YAML model from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading linear model")
	}
	return ParseLinearModel(data)
}

// DefaultLinearModel returns the built-in model.
func DefaultLinearModel() *LinearModel {
	m, err := ParseLinearModel(defaultLinearModel)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *LinearModel) Predict(_ context.Context, feats profile.Features) (float64, error) {
	score := m.intercept
	for i, f := range feats {
		score += m.weights[i] * f
	}
	if m.clamp != nil {
		if score < m.clamp[0] {
			score = m.clamp[0]
		} else if score > m.clamp[1] {
			score = m.clamp[1]
		}
	}
	return score, nil
}
