package domain

// HelpType is the kind of support requested for a journal entry. It drives
// both the AI instructions and how many prior entries are attached as context.
type HelpType string

const (
	HelpAcuteValidation   HelpType = "acute_validation"
	HelpAcuteSkills       HelpType = "acute_skills"
	HelpChronicValidation HelpType = "chronic_validation"
	HelpChronicEducation  HelpType = "chronic_education"
	HelpMaxValidation     HelpType = "max_validation"
	HelpMaxAssessment     HelpType = "max_assessment"

	// HelpSaveOnly persists the entry without invoking the AI. It is never
	// stored as the entry's help type.
	HelpSaveOnly HelpType = "save_only"
)

// HelpTypes lists every accepted help type, save_only included.
var HelpTypes = []HelpType{
	HelpAcuteValidation,
	HelpAcuteSkills,
	HelpChronicValidation,
	HelpChronicEducation,
	HelpMaxValidation,
	HelpMaxAssessment,
	HelpSaveOnly,
}

// Valid reports whether h is a member of the closed enumeration.
func (h HelpType) Valid() bool {
	switch h {
	case HelpAcuteValidation, HelpAcuteSkills,
		HelpChronicValidation, HelpChronicEducation,
		HelpMaxValidation, HelpMaxAssessment,
		HelpSaveOnly:
		return true
	}
	return false
}

// ContextSize returns how many prior entries should accompany the request.
// Unknown or absent help types get no context.
func (h HelpType) ContextSize() int {
	switch h {
	case HelpChronicValidation, HelpChronicEducation:
		return 7
	case HelpMaxValidation, HelpMaxAssessment:
		return 30
	default:
		return 0
	}
}

// AllowedForAnonymous reports whether the help type is available without an
// account. Only the acute types are; everything else needs history.
func (h HelpType) AllowedForAnonymous() bool {
	return h == HelpAcuteValidation || h == HelpAcuteSkills
}
