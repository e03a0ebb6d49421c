package profile

// Feature names, in vector order.
const (
	FeatureAge               = "age"
	FeatureGender            = "gender"
	FeatureEthnicity         = "ethnicity"
	FeatureParentalEducation = "parental_education"
	FeatureStudyTimeWeekly   = "study_time_weekly"
	FeatureAbsences          = "absences"
	FeatureTutoring          = "tutoring"
	FeatureParentalSupport   = "parental_support"
	FeatureExtracurricular   = "extracurricular"
	FeatureSports            = "sports"
	FeatureMusic             = "music"
	FeatureVolunteering      = "volunteering"
	FeatureGPA               = "gpa"
)

// FeatureNames lists the feature names in the order the classifier expects them.
var FeatureNames = [NumFeatures]string{
	FeatureAge,
	FeatureGender,
	FeatureEthnicity,
	FeatureParentalEducation,
	FeatureStudyTimeWeekly,
	FeatureAbsences,
	FeatureTutoring,
	FeatureParentalSupport,
	FeatureExtracurricular,
	FeatureSports,
	FeatureMusic,
	FeatureVolunteering,
	FeatureGPA,
}

const NumFeatures = 13

// Features is the fixed-order numeric vector handed to the grade classifier.
type Features [NumFeatures]float64

// Named maps every feature name to its value.
func (f Features) Named() map[string]float64 {
	named := make(map[string]float64, NumFeatures)
	for i, name := range FeatureNames {
		named[name] = f[i]
	}
	return named
}

// IsFeature reports whether name is a known feature name.
func IsFeature(name string) bool {
	for _, n := range FeatureNames {
		if n == name {
			return true
		}
	}
	return false
}
