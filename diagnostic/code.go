package diagnostic

// Code is a stable diagnostic identifier
type Code string

const (
	SyntaxError Code = "E001"

	// structural
	DuplicateTypeAlias Code = "E101"
	DuplicateModel     Code = "E102"
	DuplicateField     Code = "E103"
	NameConflict       Code = "E104"
	MalformedEntityID  Code = "E105"

	// reference
	UnknownType          Code = "E201"
	UnknownParent        Code = "E202"
	UnknownRemovalTarget Code = "E203"
	UnknownFieldRemoval  Code = "E204"
	UnknownFieldOverride Code = "E205"
	InvalidDefault       Code = "E206"
	ParentNotModel       Code = "E207"

	// cyclic
	CircularTypeAlias   Code = "E301"
	CircularInheritance Code = "E302"
	CircularExtends     Code = "E303"
	MissingAncestor     Code = "E304"

	// safety
	RemovedStillReferenced Code = "E401"

	// identity
	DuplicateEntityID Code = "E501"
	DuplicateFieldID  Code = "E502"
	ReusedEntityID    Code = "E503"

	MissingEntityID Code = "W005"
	MissingFieldID  Code = "W006"
	UnusedTypeAlias Code = "W101"
)

// Severity returns default severity for the code
func (c Code) Severity() Severity {
	if len(c) > 0 && c[0] == 'W' {
		return Warning
	}
	return Error
}
