package forms

import "strings"

// Sentinel labels shown as the initial option of the discriminant dropdowns.
// They read as "nothing selected".
const (
	SoftwareSentinel    = "Project software"
	ProjectTypeSentinel = "Project type"
)

// Software is the live-coding environment a project was written for.
type Software int

const (
	SoftwareUnset Software = iota
	SoftwareTidalCycles
	SoftwareStrudel
)

// Softwares lists the selectable environments in display order.
var Softwares = []Software{SoftwareTidalCycles, SoftwareStrudel}

// ParseSoftware maps a dropdown label onto a Software. Empty input, the
// sentinel label and unknown labels all map to SoftwareUnset.
func ParseSoftware(raw string) Software {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tidal cycles", "tidalcycles", "tidal":
		return SoftwareTidalCycles
	case "strudel":
		return SoftwareStrudel
	default:
		return SoftwareUnset
	}
}

// String returns the dropdown label, or "" for SoftwareUnset.
func (s Software) String() string {
	switch s {
	case SoftwareTidalCycles:
		return "Tidal Cycles"
	case SoftwareStrudel:
		return "Strudel"
	default:
		return ""
	}
}

// Slug is the stable storage identifier for the software.
func (s Software) Slug() string {
	switch s {
	case SoftwareTidalCycles:
		return "tidal"
	case SoftwareStrudel:
		return "strudel"
	default:
		return ""
	}
}

// ProjectType selects which code fields a project submission carries.
type ProjectType int

const (
	ProjectTypeUnset ProjectType = iota
	ProjectTypeFinished
	ProjectTypeBeforeAndAfter
)

// ProjectTypes lists the selectable project types in display order.
var ProjectTypes = []ProjectType{ProjectTypeFinished, ProjectTypeBeforeAndAfter}

// ParseProjectType maps a dropdown label onto a ProjectType.
func ParseProjectType(raw string) ProjectType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "finished project", "finished":
		return ProjectTypeFinished
	case "before and after live coding project", "before-and-after", "before and after":
		return ProjectTypeBeforeAndAfter
	default:
		return ProjectTypeUnset
	}
}

// String returns the dropdown label for the type, empty when unset.
func (t ProjectType) String() string {
	switch t {
	case ProjectTypeFinished:
		return "Finished Project"
	case ProjectTypeBeforeAndAfter:
		return "Before and After Live Coding Project"
	default:
		return ""
	}
}

// Slug is the stable storage identifier for the project type.
func (t ProjectType) Slug() string {
	switch t {
	case ProjectTypeFinished:
		return "finished"
	case ProjectTypeBeforeAndAfter:
		return "before-and-after"
	default:
		return ""
	}
}

// Discriminants are the two dropdowns whose values toggle which other fields
// are visible and required.
type Discriminants struct {
	Software Software
	Type     ProjectType
}

// DiscriminantsFrom derives the discriminants from raw form values.
func DiscriminantsFrom(values Values) Discriminants {
	return Discriminants{
		Software: ParseSoftware(values.Text(FieldProjectSoftware)),
		Type:     ParseProjectType(values.Text(FieldProjectType)),
	}
}

func isDiscriminant(field Field) bool {
	return field == FieldProjectSoftware || field == FieldProjectType
}
