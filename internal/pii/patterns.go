package pii

import "regexp"

// catalog is the fixed detection order. Earlier entries claim ambiguous
// spans (a spaced 16-digit run is a credit card, not a phone number), so
// the order itself is part of the contract and must not be rearranged.
var catalog = []Pattern{
	{
		Type:        TypeSSN,
		Regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
		Placeholder: "[SSN_REDACTED]",
	},
	{
		Type:        TypeCreditCard,
		Regex:       regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}\b`),
		Placeholder: "[CREDIT_CARD_REDACTED]",
	},
	{
		Type:        TypeEmail,
		Regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
		Placeholder: "[EMAIL_REDACTED]",
	},
	{
		Type:        TypePhone,
		Regex:       regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		Placeholder: "[PHONE_REDACTED]",
	},
	{
		Type:        TypeAddress,
		Regex:       regexp.MustCompile(`(?i)\b\d{1,5}\s+(?:[A-Za-z0-9]+\s+){1,4}(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|place|pl|way)\b`),
		Placeholder: "[ADDRESS_REDACTED]",
	},
	{
		Type:        TypeIPAddress,
		Regex:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		Placeholder: "[IP_ADDRESS_REDACTED]",
	},
	{
		Type:        TypeDateOfBirth,
		Regex:       regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])[/-](?:0?[1-9]|[12]\d|3[01])[/-](?:19|20)\d{2}\b`),
		Placeholder: "[DOB_REDACTED]",
	},
}

// Catalog returns the detection patterns in evaluation order.
func Catalog() []Pattern {
	out := make([]Pattern, len(catalog))
	copy(out, catalog)
	return out
}
