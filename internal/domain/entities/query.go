package entities

// Gender is the gender extracted from a query, if any.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// ParsedQuery holds the structured fields extracted from a raw insurance
// query. Every field besides RawQuery is optional; a zero value means the
// field could not be extracted, never that parsing failed.
type ParsedQuery struct {
	RawQuery             string `json:"raw_query"`
	Age                  *int   `json:"age"`
	Gender               Gender `json:"gender,omitempty"`
	Procedure            string `json:"procedure,omitempty"`
	Location             string `json:"location,omitempty"`
	PolicyDurationMonths *int   `json:"policy_duration_months"`
}
