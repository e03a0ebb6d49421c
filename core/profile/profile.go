// Package profile turns a student's form answers into the classifier's feature vector.
package profile

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core"
)

// ErrInvalidInput is the cause of every profile validation error.
var ErrInvalidInput = errors.New("invalid profile input")

// Profile holds the answers of one assessment form. It is never persisted.
type Profile struct {
	Age               int     `json:"age" validate:"gte=10,lte=99"`
	Gender            bool    `json:"gender"`
	Ethnicity         int     `json:"ethnicity" validate:"gte=0,lte=3"`
	ParentalEducation int     `json:"parental_education" validate:"gte=0,lte=4"`
	StudyTimeWeekly   float64 `json:"study_time_weekly" validate:"gte=0,lte=40"`
	Absences          int     `json:"absences" validate:"gte=0,lte=50"`
	Tutoring          bool    `json:"tutoring"`
	ParentalSupport   int     `json:"parental_support" validate:"gte=0,lte=4"`
	Extracurricular   bool    `json:"extracurricular"`
	Sports            bool    `json:"sports"`
	Music             bool    `json:"music"`
	Volunteering      bool    `json:"volunteering"`
	GPA               float64 `json:"gpa" validate:"gte=0,lte=4"`
}

// Validate checks every field range at once. All violations are reported in a single *core.ValidationError.
func (p *Profile) Validate(validate *validator.Validate, translator ut.Translator) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return errors.Wrap(err, "validating profile")
	}
	return core.NewValidationError(ErrInvalidInput, core.TranslateFieldErrors(vErrs, translator)...)
}

// Normalize validates p and returns its feature vector.
func Normalize(p Profile, validate *validator.Validate, translator ut.Translator) (Features, error) {
	if err := p.Validate(validate, translator); err != nil {
		return Features{}, err
	}
	return Features{
		float64(p.Age),
		binary(p.Gender),
		float64(p.Ethnicity),
		float64(p.ParentalEducation),
		p.StudyTimeWeekly,
		float64(p.Absences),
		binary(p.Tutoring),
		float64(p.ParentalSupport),
		binary(p.Extracurricular),
		binary(p.Sports),
		binary(p.Music),
		binary(p.Volunteering),
		p.GPA,
	}, nil
}

func binary(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
