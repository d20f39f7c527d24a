package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/service/links"
	"github.com/octobees/cardcrm/internal/service/phone"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

var socialHosts = map[string]string{
	"instagram": "instagram.com",
	"facebook":  "facebook.com",
	"telegram":  "t.me",
}

// FieldIssue flags an extracted value the operator should double-check.
// Values are never rewritten; the issue is advisory.
type FieldIssue struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// ReviewCard inspects an extraction result for values that are likely misread.
func ReviewCard(card entity.ExtractedCard) []FieldIssue {
	var issues []FieldIssue
	add := func(field, value, reason string) {
		issues = append(issues, FieldIssue{Field: field, Value: value, Reason: reason})
	}

	if links.IsEmpty(card.CompanyName) {
		add("companyName", card.CompanyName, "missing, placeholder used")
	}
	if links.IsEmpty(card.PersonName) {
		add("personName", card.PersonName, "missing, placeholder used")
	}

	for _, f := range []struct{ name, value string }{{"phone", card.Phone}, {"whatsapp", card.WhatsApp}} {
		if links.IsEmpty(f.value) {
			continue
		}
		candidates := phone.Candidates(f.value)
		if len(candidates) == 0 {
			add(f.name, f.value, "no dialable number")
			continue
		}
		for _, c := range candidates {
			if !c.Valid {
				add(f.name, c.Raw, "number may be misread")
			}
		}
	}

	if !links.IsEmpty(card.Email) && !validEmail(card.Email) {
		add("email", card.Email, "email looks malformed")
	}

	for _, f := range []struct{ name, value string }{
		{"instagram", card.Instagram}, {"facebook", card.Facebook}, {"telegram", card.Telegram},
	} {
		if links.IsEmpty(f.value) || !looksLikeURL(f.value) {
			continue
		}
		u, err := sanitizeURL(f.value)
		if err != nil || !hostMatches(u.Hostname(), socialHosts[f.name]) {
			add(f.name, f.value, "link does not point to "+socialHosts[f.name])
		}
	}

	if !links.IsEmpty(card.Website) {
		if _, err := sanitizeURL(card.Website); err != nil {
			add("website", card.Website, "website is not a valid address")
		}
	}
	return issues
}

func validEmail(raw string) bool {
	email := strings.ToLower(strings.TrimSpace(raw))
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return false
	}
	asciiDomain, err := idnaProfile.ToASCII(parts[1])
	if err != nil || asciiDomain == "" {
		return false
	}
	return emailPattern.MatchString(parts[0] + "@" + asciiDomain)
}

func looksLikeURL(value string) bool {
	v := strings.TrimSpace(value)
	return strings.Contains(v, "://") || strings.Contains(v, "/")
}

func hostMatches(host, domain string) bool {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	host = strings.TrimPrefix(host, "www.")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return nil, errors.New("invalid url")
	}
	if !strings.Contains(u.Hostname(), ".") {
		return nil, errors.New("host has no domain")
	}
	return u, nil
}
