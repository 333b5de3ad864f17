// Package viewmodel defines presentation-ready structs for the page components.
// View models decouple rendering from domain model types.
package viewmodel

// DashboardViewModel holds the data for the landing page.
type DashboardViewModel struct {
	KeyConfigured bool
	KeyHint       string // masked key, e.g. "AIza…x9Qk"
	SetupDone     bool
	Profiles      []ProfileCardViewModel
}

// ProfileCardViewModel holds presentation-ready data for one profile row.
type ProfileCardViewModel struct {
	ID           string
	Name         string
	LastModified string
	ModifiedBy   string
	PreviewPath  string
}

// ProfileDetailViewModel holds the data for the profile preview page.
type ProfileDetailViewModel struct {
	ProfileCardViewModel

	SchemaVersion    int
	InstructionsHTML string // sanitized HTML rendered from the instructions markdown
	Fields           []FieldViewModel
}

// FieldViewModel is one free-form profile key and its raw JSON value.
type FieldViewModel struct {
	Key   string
	Value string
}

// SetupViewModel holds the data for the setup confirmation page.
type SetupViewModel struct {
	Title      string
	CSRFField  string
	CSRFToken  string
	Configured bool
	CreatedAt  string
}
