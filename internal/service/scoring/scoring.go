// Package scoring rates how reachable and complete a contact record is, so
// the pipeline can surface the cards worth following up first.
package scoring

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/service/links"
	"github.com/octobees/cardcrm/internal/service/phone"
)

// Score categories.
const (
	CategoryReach   = "reachability"
	CategorySocial  = "social_presence"
	CategoryProfile = "business_profile"
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"business.site",
	"linktr.ee",
	"godaddysites.com",
	"notion.site",
}

// Result reports the aggregate score and the per-category breakdown.
type Result struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// Compute scores a contact out of 100.
func Compute(c entity.Contact) Result {
	breakdown := map[string]int{
		CategoryReach:   scoreReach(c),
		CategorySocial:  scoreSocial(c),
		CategoryProfile: scoreProfile(c),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}
	return Result{Total: total, Breakdown: breakdown}
}

func scoreReach(c entity.Contact) int {
	score := 0
	chat := bestCandidate(c.WhatsApp)
	if chat.Number != "" {
		score += 15
		if chat.Valid && chat.Mobile {
			score += 5
		}
	}
	if call := bestCandidate(c.Phone); call.Number != "" && call.Number != chat.Number {
		score += 10
	}
	if !links.IsEmpty(c.Email) && strings.Contains(c.Email, "@") {
		score += 10
	}
	return min(score, 40)
}

func scoreSocial(c entity.Contact) int {
	score := 0
	for _, value := range []string{c.Instagram, c.Facebook, c.Telegram} {
		if !links.IsEmpty(value) {
			score += 10
		}
	}
	return min(score, 30)
}

func scoreProfile(c entity.Contact) int {
	score := 0
	if highQualityDomain(c.Website) {
		score += 15
	}
	if hasCompleteAddress(c.Address) {
		score += 10
	}
	if !links.IsEmpty(c.Field) {
		score += 5
	}
	return min(score, 30)
}

// bestCandidate returns the first valid number in raw, else the first dialable one.
func bestCandidate(raw string) phone.Candidate {
	if links.IsEmpty(raw) {
		return phone.Candidate{}
	}
	candidates := phone.Candidates(raw)
	for _, c := range candidates {
		if c.Valid {
			return c
		}
	}
	for _, c := range candidates {
		if c.Number != "" {
			return c
		}
	}
	return phone.Candidate{}
}

func hasCompleteAddress(raw string) bool {
	addr := strings.TrimSpace(raw)
	if links.IsEmpty(addr) || len([]rune(addr)) < 10 {
		return false
	}
	var hasLetter, hasDigit bool
	separators := 0
	for _, r := range addr {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case r == ',' || r == '،' || r == '-':
			separators++
		}
	}
	return hasLetter && hasDigit && separators >= 1
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Contains(domain, ".")
}

func extractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if links.IsEmpty(raw) {
		return ""
	}
	lowered := strings.ToLower(raw)
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
