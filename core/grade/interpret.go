package grade

// ColorTier names the palette entry a grade is rendered with.
type ColorTier string

const (
	TierA       ColorTier = "grade_a"
	TierB       ColorTier = "grade_b"
	TierC       ColorTier = "grade_c"
	TierD       ColorTier = "grade_d"
	TierF       ColorTier = "grade_f"
	TierNeutral ColorTier = "neutral"
)

// PeerRoute tells where a student is sent in the peer directory.
type PeerRoute string

const (
	// RouteOfferHelp lets the student volunteer as a helper and browse students needing help.
	RouteOfferHelp PeerRoute = "offer_help"
	// RouteFindHelpers sends the student to the list of helpers.
	RouteFindHelpers PeerRoute = "find_helpers"
)

// SubScores is the performance breakdown, each in [0, 1].
type SubScores struct {
	StudyHabits    float64 `json:"study_habits"`
	Engagement     float64 `json:"engagement"`
	Support        float64 `json:"support"`
	AcademicSkills float64 `json:"academic_skills"`
}

type Interpretation struct {
	Class           Class     `json:"class"`
	Letter          string    `json:"letter"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ColorTier       ColorTier `json:"color_tier"`
	Color           string    `json:"color"`
	SubScores       SubScores `json:"sub_scores"`
	Recommendations []string  `json:"recommendations"`
	PeerRoute       PeerRoute `json:"peer_route"`
}

var (
	table = map[Class]Interpretation{
		A: {
			Title:       "Excellent Performance",
			Description: "You're on track for outstanding academic success!",
			ColorTier:   TierA,
			Color:       "#4ECDC4",
			SubScores:   SubScores{StudyHabits: .95, Engagement: .9, Support: .85, AcademicSkills: .9},
			Recommendations: []string{
				"Continue your excellent study habits",
				"Consider mentoring other students who need help",
				"Explore advanced material to challenge yourself further",
				"Look into academic competitions or research opportunities",
			},
			PeerRoute: RouteOfferHelp,
		},
		B: {
			Title:       "Good Performance",
			Description: "You're doing well with room for excellence",
			ColorTier:   TierB,
			Color:       "#6C63FF",
			SubScores:   SubScores{StudyHabits: .8, Engagement: .75, Support: .7, AcademicSkills: .8},
			Recommendations: []string{
				"Increase study time by 2-3 hours per week for optimal results",
				"Join study groups to enhance your understanding",
				"Seek feedback from teachers on areas to improve",
				"Consider additional practice in challenging subjects",
			},
			PeerRoute: RouteOfferHelp,
		},
		C: {
			Title:       "Average Performance",
			Description: "Your performance is average with potential to improve",
			ColorTier:   TierC,
			Color:       "#FFD166",
			SubScores:   SubScores{StudyHabits: .6, Engagement: .55, Support: .65, AcademicSkills: .6},
			Recommendations: []string{
				"Establish a consistent study schedule of at least 10 hours weekly",
				"Find a study partner to help with accountability",
				"Use active learning techniques rather than passive reading",
				"Visit office hours or get tutoring for difficult subjects",
			},
			PeerRoute: RouteOfferHelp,
		},
		D: {
			Title:       "Needs Improvement",
			Description: "You may need additional support to improve your grades",
			ColorTier:   TierD,
			Color:       "#FF9F1C",
			SubScores:   SubScores{StudyHabits: .4, Engagement: .35, Support: .45, AcademicSkills: .4},
			Recommendations: []string{
				"Create a structured daily study plan of at least 2 hours",
				"Seek tutoring for subjects where you're struggling",
				"Improve attendance and engagement in class",
				"Meet with academic advisors to discuss additional support options",
			},
			PeerRoute: RouteFindHelpers,
		},
		F: {
			Title:       "Struggling",
			Description: "You're facing challenges that need to be addressed",
			ColorTier:   TierF,
			Color:       "#FF6B6B",
			SubScores:   SubScores{StudyHabits: .2, Engagement: .25, Support: .3, AcademicSkills: .2},
			Recommendations: []string{
				"Establish regular meetings with teachers or tutors",
				"Create a daily structured study plan with specific goals",
				"Address any barriers to learning (attendance, focus issues)",
				"Connect with counselors for additional support resources",
			},
			PeerRoute: RouteFindHelpers,
		},
	}

	unknown = Interpretation{
		Class:       Unknown,
		Letter:      Unknown.Letter(),
		Title:       "Unknown Performance",
		Description: "We couldn't determine your performance from the information provided",
		ColorTier:   TierNeutral,
		Color:       "#6B6E76",
		SubScores:   SubScores{StudyHabits: .5, Engagement: .5, Support: .5, AcademicSkills: .5},
		Recommendations: []string{
			"Establish regular meetings with teachers or tutors",
			"Create a daily structured study plan with specific goals",
			"Address any barriers to learning (attendance, focus issues)",
			"Consider academic coaching for study skills development",
			"Connect with counselors for additional support resources",
		},
		PeerRoute: RouteFindHelpers,
	}
)

// Interpret returns the fixed interpretation of c. Classes outside A..F get the unknown tier.
// The returned Recommendations slice is a copy and may be modified by the caller.
func Interpret(c Class) Interpretation {
	in, ok := table[c]
	if !ok {
		in = unknown
	} else {
		in.Class = c
		in.Letter = c.Letter()
	}
	in.Recommendations = append([]string(nil), in.Recommendations...)
	return in
}
