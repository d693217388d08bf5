package models

// Subject identifies the school subject a worksheet belongs to
type Subject string

const (
	SubjectPortuguese              Subject = "portuguese"
	SubjectMath                    Subject = "math"
	SubjectNaturalAndSocialStudies Subject = "natural-and-social-studies"
	SubjectEnglish                 Subject = "english"

	// SubjectAll is a filter value only; it is never used as a metrics bucket
	// or a generation target.
	SubjectAll Subject = "all"
)

// MetricSubjects lists the subjects that carry per-subject statistics.
// SubjectAll is deliberately excluded.
var MetricSubjects = []Subject{
	SubjectPortuguese,
	SubjectMath,
	SubjectNaturalAndSocialStudies,
	SubjectEnglish,
}

// Valid reports whether s is a known subject, including the "all" filter value.
func (s Subject) Valid() bool {
	switch s {
	case SubjectPortuguese, SubjectMath, SubjectNaturalAndSocialStudies, SubjectEnglish, SubjectAll:
		return true
	}
	return false
}

// MetricsBucket reports whether s may own a SubjectMetrics entry.
func (s Subject) MetricsBucket() bool {
	return s.Valid() && s != SubjectAll
}
