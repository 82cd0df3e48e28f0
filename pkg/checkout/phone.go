package checkout

import "strings"

// CountryRule maps a dialing code to the number of national phone digits.
type CountryRule struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Digits int    `json:"digits"`
}

const DefaultCountryCode = "+91"

var countryRules = []CountryRule{
	{Code: "+91", Name: "India", Digits: 10},
	{Code: "+65", Name: "Singapore", Digits: 8},
	{Code: "+971", Name: "United Arab Emirates", Digits: 9},
	{Code: "+1", Name: "United States", Digits: 10},
	{Code: "+44", Name: "United Kingdom", Digits: 10},
}

// Countries returns the supported dialing codes in display order.
func Countries() []CountryRule {
	out := make([]CountryRule, len(countryRules))
	copy(out, countryRules)
	return out
}

// LookupCountry finds the rule for a dialing code.
func LookupCountry(code string) (CountryRule, bool) {
	for _, r := range countryRules {
		if r.Code == code {
			return r, true
		}
	}
	return CountryRule{}, false
}

// digitLimit falls back to the default country for unknown codes.
func digitLimit(code string) int {
	if r, ok := LookupCountry(code); ok {
		return r.Digits
	}
	r, _ := LookupCountry(DefaultCountryCode)
	return r.Digits
}

// SanitizePhone strips everything but ASCII digits and truncates to limit.
func SanitizePhone(raw string, limit int) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() >= limit {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
