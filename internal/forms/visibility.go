package forms

import "sort"

// Section identifies an optional block of fields that is only rendered for
// some discriminant values.
type Section string

const (
	SectionDescription     Section = "description"
	SectionSingleCode      Section = "single-code"
	SectionBeforeAfterCode Section = "before-after-code"
)

// SectionSet is the set of currently visible sections.
type SectionSet map[Section]bool

// Has reports whether the section is visible.
func (s SectionSet) Has(section Section) bool {
	return s[section]
}

// List returns the visible sections sorted by name.
func (s SectionSet) List() []Section {
	out := make([]Section, 0, len(s))
	for section, visible := range s {
		if visible {
			out = append(out, section)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// VisibleSections derives the rendered sections for the project form. The
// software and type axes gate their own sections independently.
func VisibleSections(d Discriminants) SectionSet {
	set := SectionSet{}
	if d.Software != SoftwareUnset {
		set[SectionDescription] = true
	}
	switch d.Type {
	case ProjectTypeFinished:
		set[SectionSingleCode] = true
	case ProjectTypeBeforeAndAfter:
		set[SectionBeforeAfterCode] = true
	case ProjectTypeUnset:
	}
	return set
}

// VisibleSectionsFor narrows VisibleSections to what a variant renders.
// Snippets always show their single code block and have no type dropdown.
func VisibleSectionsFor(variant Variant, d Discriminants) SectionSet {
	switch variant {
	case ProjectForm:
		return VisibleSections(d)
	case SnippetForm:
		set := SectionSet{SectionSingleCode: true}
		if d.Software != SoftwareUnset {
			set[SectionDescription] = true
		}
		return set
	default:
		return SectionSet{}
	}
}

// IsRequired reports whether field must be filled in for the given variant
// and discriminants. The rule engine consults it instead of the renderer.
func IsRequired(variant Variant, field Field, d Discriminants) bool {
	switch variant {
	case ProjectForm:
		switch field {
		case FieldProjectSoftware, FieldProjectType, FieldProjectName:
			return true
		case FieldDescription:
			return d.Software != SoftwareUnset
		case FieldSingleProject:
			return d.Type == ProjectTypeFinished
		case FieldCodeBlockOne, FieldCodeBlockTwo:
			return d.Type == ProjectTypeBeforeAndAfter
		}
	case SnippetForm:
		switch field {
		case FieldProjectSoftware, FieldSnippetName, FieldCodeBlock:
			return true
		case FieldDescription:
			return d.Software != SoftwareUnset
		}
	case RegistrationForm:
		switch field {
		case FieldUsername, FieldEmail, FieldPasswordOne, FieldPasswordTwo:
			return true
		}
	}
	return false
}

// conditionalFields are the fields whose requirement depends on a discriminant.
var conditionalFields = []Field{
	FieldDescription,
	FieldSingleProject,
	FieldCodeBlockOne,
	FieldCodeBlockTwo,
}

// HelperText returns the description hint shown for the selected software.
func HelperText(software Software) string {
	switch software {
	case SoftwareTidalCycles:
		return "Tell us about your Tidal Cycles project: which samples, effects and patterns you used, and anything that helps others run it in their own Tidal setup."
	case SoftwareStrudel:
		return "Tell us about your Strudel project: which sounds and functions you used, and anything that helps others play it back in the Strudel REPL."
	default:
		return ""
	}
}
