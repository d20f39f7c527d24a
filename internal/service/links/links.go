// Package links turns stored channel values into openable URIs.
package links

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/service/phone"
)

// NullSentinel is the literal left behind by upstream serialization of missing values.
const NullSentinel = "null"

var (
	schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	listDelimiter = regexp.MustCompile(`[,;|/]`)
	idnaProfile   = idna.Lookup
)

var socialDomains = map[entity.ChannelType]string{
	entity.ChannelInstagram: "instagram.com",
	entity.ChannelFacebook:  "facebook.com",
	entity.ChannelTelegram:  "t.me",
}

// Row is one resolved channel of a contact.
type Row struct {
	Key   string             `json:"key"`
	Label string             `json:"label"`
	Type  entity.ChannelType `json:"type"`
	Value string             `json:"value"`
	URI   string             `json:"uri,omitempty"`
}

// IsEmpty reports whether value carries no usable text.
func IsEmpty(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || value == NullSentinel
}

// Resolve maps a channel value to a URI. The boolean is false when the value
// is empty or yields nothing openable.
func Resolve(channel entity.ChannelType, raw string) (string, bool) {
	if IsEmpty(raw) {
		return "", false
	}
	value := strings.TrimSpace(raw)

	switch channel {
	case entity.ChannelInstagram, entity.ChannelFacebook, entity.ChannelTelegram:
		return resolveSocial(socialDomains[channel], value)
	case entity.ChannelWebsite:
		return resolveWebsite(value)
	case entity.ChannelPhone:
		digits := phone.Digits(firstListed(value))
		if digits == "" {
			return "", false
		}
		return "tel:" + digits, true
	case entity.ChannelWhatsApp:
		return WhatsAppURI(value, "")
	case entity.ChannelEmail:
		return "mailto:" + value, true
	default:
		return "", false
	}
}

// WhatsAppURI builds a wa.me chat link for the first number in raw, with an
// optional prefilled message.
func WhatsAppURI(raw, message string) (string, bool) {
	number := phone.Normalize(firstListed(raw))
	if number == "" {
		return "", false
	}
	uri := "https://wa.me/" + number
	if message != "" {
		uri += "?text=" + EscapeComponent(message)
	}
	return uri, true
}

// firstListed returns the first non-blank entry of a list separated by ',',
// ';', '|' or '/'. Spaces stay inside an entry so grouped numbers like
// "+20 10 1234 5678" survive.
func firstListed(raw string) string {
	for _, part := range listDelimiter.Split(raw, -1) {
		if part = strings.TrimSpace(part); part != "" {
			return part
		}
	}
	return ""
}

// ResolveAll resolves every channel row of the contact in display order.
func ResolveAll(c entity.Contact) []Row {
	rows := make([]Row, 0, len(entity.ChannelFields))
	for _, field := range entity.ChannelFields {
		value := c.Channel(field.Type)
		if value == NullSentinel {
			value = ""
		}
		row := Row{Key: field.Key, Label: field.Label, Type: field.Type, Value: value}
		if uri, ok := Resolve(field.Type, value); ok {
			row.URI = uri
		}
		rows = append(rows, row)
	}
	return rows
}

func resolveSocial(domain, value string) (string, bool) {
	if strings.Contains(strings.ToLower(value), domain) {
		if !schemePattern.MatchString(value) {
			value = "https://" + value
		}
		return value, true
	}
	handle := strings.TrimPrefix(value, "@")
	if handle == "" {
		return "", false
	}
	return "https://" + domain + "/" + handle, true
}

func resolveWebsite(value string) (string, bool) {
	if schemePattern.MatchString(value) {
		return value, true
	}
	host, rest := value, ""
	if idx := strings.IndexAny(value, "/?#"); idx >= 0 {
		host, rest = value[:idx], value[idx:]
	}
	if !isASCII(host) {
		if ascii, err := idnaProfile.ToASCII(host); err == nil && ascii != "" {
			host = ascii
		}
	}
	return "https://" + host + rest, true
}

// EscapeComponent percent-encodes s for a URI query value, spaces as %20.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
