package pii

import "regexp"

// Type identifies a category of personally identifiable information.
type Type string

const (
	TypeSSN         Type = "ssn"
	TypeCreditCard  Type = "credit_card"
	TypeEmail       Type = "email"
	TypePhone       Type = "phone"
	TypeAddress     Type = "address"
	TypeIPAddress   Type = "ip_address"
	TypeDateOfBirth Type = "date_of_birth"
)

// Pattern couples a PII type with its matching rule and the fixed
// placeholder substituted for every occurrence.
type Pattern struct {
	Type        Type
	Regex       *regexp.Regexp
	Placeholder string
}

// Match is a single detected PII span. Start and End are byte offsets
// into the original text, not the redacted copy.
type Match struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Result contains everything a single detection pass produced.
// Values are never mutated after Detect returns.
type Result struct {
	HasPII       bool    `json:"has_pii"`
	Types        []Type  `json:"types"`
	Count        int     `json:"count"`
	Matches      []Match `json:"matches"`
	RedactedText string  `json:"redacted_text"`
}
