package phone

import (
	"github.com/nyaruka/phonenumbers"
)

// Candidate is one number parsed out of a channel field, annotated for the
// disambiguation picker.
type Candidate struct {
	Raw     string `json:"raw"`
	Number  string `json:"number"`
	Display string `json:"display"`
	Region  string `json:"region,omitempty"`
	Mobile  bool   `json:"mobile"`
	Valid   bool   `json:"valid"`
}

// Describe normalizes raw and reports what libphonenumber knows about the
// result. The annotation is informational; routing always uses Number.
func Describe(raw string) Candidate {
	number := Normalize(raw)
	c := Candidate{Raw: raw, Number: number, Display: number}
	if number == "" {
		return c
	}

	parsed, err := phonenumbers.Parse("+"+number, "")
	if err != nil {
		return c
	}
	c.Region = phonenumbers.GetRegionCodeForNumber(parsed)
	c.Valid = phonenumbers.IsValidNumber(parsed)
	if c.Valid {
		c.Display = phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
		switch phonenumbers.GetNumberType(parsed) {
		case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
			c.Mobile = true
		}
	}
	return c
}

// Candidates splits raw and describes every piece.
func Candidates(raw string) []Candidate {
	pieces := Split(raw)
	out := make([]Candidate, 0, len(pieces))
	for _, piece := range pieces {
		out = append(out, Describe(piece))
	}
	return out
}
