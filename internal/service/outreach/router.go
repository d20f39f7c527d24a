// Package outreach decides how a templated message reaches a contact.
//
// Routing is pure: the router returns a Decision and never touches the
// contact collection. Callers persist RecordSend's result once a message has
// actually been dispatched.
package outreach

import (
	"errors"
	"strings"
	"time"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/service/links"
	"github.com/octobees/cardcrm/internal/service/phone"
)

// Placeholder tokens understood by Render.
const (
	PlaceholderPersonName  = "{{personName}}"
	PlaceholderCompanyName = "{{companyName}}"
	PlaceholderMyName      = "{{myName}}"
	PlaceholderEvent       = "{{event}}"
)

// ErrUnknownCandidate is returned when a chosen number is not one of the contact's candidates.
var ErrUnknownCandidate = errors.New("number is not a candidate for this contact")

// Outcome classifies a routing decision.
type Outcome string

const (
	// OutcomeNoNumber means the contact has no usable number; nothing is sent.
	OutcomeNoNumber Outcome = "no_number"
	// OutcomeDispatch means URI is ready to open.
	OutcomeDispatch Outcome = "dispatch"
	// OutcomeChoose means the caller must pick one of Candidates first.
	OutcomeChoose Outcome = "choose"
)

// Session carries sender-side values for placeholders.
type Session struct {
	SenderName string
	Event      string
}

// Fillers replace placeholders whose backing value is empty.
type Fillers struct {
	PersonName  string `json:"personName" yaml:"personName"`
	CompanyName string `json:"companyName" yaml:"companyName"`
	MyName      string `json:"myName" yaml:"myName"`
	Event       string `json:"event" yaml:"event"`
}

// DefaultFillers are the salutations used when a contact field is blank.
func DefaultFillers() Fillers {
	return Fillers{
		PersonName:  "يا فنان",
		CompanyName: "حضرتك",
		MyName:      "فريقنا",
		Event:       "المعرض",
	}
}

// Decision is the result of routing one message.
type Decision struct {
	Outcome    Outcome           `json:"outcome"`
	Message    string            `json:"message"`
	Number     string            `json:"number,omitempty"`
	URI        string            `json:"uri,omitempty"`
	Candidates []phone.Candidate `json:"candidates,omitempty"`
}

// Router renders templates and picks the delivery number.
type Router struct {
	fillers Fillers
}

// NewRouter builds a router. Blank fillers fall back to DefaultFillers.
func NewRouter(fillers Fillers) *Router {
	defaults := DefaultFillers()
	if strings.TrimSpace(fillers.PersonName) == "" {
		fillers.PersonName = defaults.PersonName
	}
	if strings.TrimSpace(fillers.CompanyName) == "" {
		fillers.CompanyName = defaults.CompanyName
	}
	if strings.TrimSpace(fillers.MyName) == "" {
		fillers.MyName = defaults.MyName
	}
	if strings.TrimSpace(fillers.Event) == "" {
		fillers.Event = defaults.Event
	}
	return &Router{fillers: fillers}
}

// Render expands the known placeholders of tmpl. Unknown tokens are left as written.
func (r *Router) Render(tmpl string, c entity.Contact, s Session) string {
	replacer := strings.NewReplacer(
		PlaceholderPersonName, orDefault(c.PersonName, r.fillers.PersonName),
		PlaceholderCompanyName, orDefault(c.CompanyName, r.fillers.CompanyName),
		PlaceholderMyName, orDefault(s.SenderName, r.fillers.MyName),
		PlaceholderEvent, orDefault(s.Event, r.fillers.Event),
	)
	return replacer.Replace(tmpl)
}

// Route renders tmpl for c and decides whether it can be sent right away.
func (r *Router) Route(c entity.Contact, tmpl string, s Session) Decision {
	message := r.Render(tmpl, c, s)
	candidates := candidateNumbers(c)

	switch len(candidates) {
	case 0:
		return Decision{Outcome: OutcomeNoNumber, Message: message}
	case 1:
		return dispatch(message, candidates[0])
	default:
		described := make([]phone.Candidate, 0, len(candidates))
		for _, raw := range candidates {
			described = append(described, phone.Describe(raw))
		}
		return Decision{Outcome: OutcomeChoose, Message: message, Candidates: described}
	}
}

// Choose dispatches an already rendered message to the number the user picked.
// chosen may be given raw or canonical; it must match one of the contact's candidates.
func (r *Router) Choose(c entity.Contact, message, chosen string) (Decision, error) {
	want := phone.Normalize(chosen)
	if want == "" {
		return Decision{}, ErrUnknownCandidate
	}
	for _, raw := range candidateNumbers(c) {
		if phone.Normalize(raw) == want {
			return dispatch(message, raw), nil
		}
	}
	return Decision{}, ErrUnknownCandidate
}

// RecordSend returns c updated for a dispatched message: a New contact moves
// to Contacted, and the last-contact time is always refreshed.
func RecordSend(c entity.Contact, at time.Time) entity.Contact {
	if c.Status == entity.StatusNew {
		c.Status = entity.StatusContacted
	}
	stamp := at
	c.LastContactDate = &stamp
	return c
}

func dispatch(message, raw string) Decision {
	number := phone.Normalize(raw)
	uri, ok := links.WhatsAppURI(number, message)
	if !ok {
		return Decision{Outcome: OutcomeNoNumber, Message: message}
	}
	return Decision{Outcome: OutcomeDispatch, Message: message, Number: number, URI: uri}
}

// candidateNumbers prefers the whatsapp field and falls back to phone when it is blank.
func candidateNumbers(c entity.Contact) []string {
	if !links.IsEmpty(c.WhatsApp) {
		return phone.Split(c.WhatsApp)
	}
	if !links.IsEmpty(c.Phone) {
		return phone.Split(c.Phone)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
