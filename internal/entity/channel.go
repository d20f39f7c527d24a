package entity

// ChannelType names a contact method with its own link rule.
type ChannelType string

// Supported channels.
const (
	ChannelInstagram ChannelType = "instagram"
	ChannelFacebook  ChannelType = "facebook"
	ChannelTelegram  ChannelType = "telegram"
	ChannelWebsite   ChannelType = "website"
	ChannelWhatsApp  ChannelType = "whatsapp"
	ChannelPhone     ChannelType = "phone"
	ChannelEmail     ChannelType = "email"
)

// ChannelField describes one row of the contact detail view.
type ChannelField struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Type  ChannelType `json:"type"`
}

// ChannelFields is the fixed, ordered list of channel rows.
var ChannelFields = []ChannelField{
	{Key: "instagram", Label: "Instagram", Type: ChannelInstagram},
	{Key: "facebook", Label: "Facebook", Type: ChannelFacebook},
	{Key: "telegram", Label: "Telegram", Type: ChannelTelegram},
	{Key: "website", Label: "Website", Type: ChannelWebsite},
	{Key: "whatsapp", Label: "WhatsApp", Type: ChannelWhatsApp},
	{Key: "phone", Label: "Phone", Type: ChannelPhone},
	{Key: "email", Label: "Email", Type: ChannelEmail},
}

// ParseChannelType reports whether value names a supported channel.
func ParseChannelType(value string) (ChannelType, bool) {
	for _, f := range ChannelFields {
		if string(f.Type) == value {
			return f.Type, true
		}
	}
	return "", false
}

// Channel returns the raw stored value for the given channel.
func (c Contact) Channel(t ChannelType) string {
	switch t {
	case ChannelInstagram:
		return c.Instagram
	case ChannelFacebook:
		return c.Facebook
	case ChannelTelegram:
		return c.Telegram
	case ChannelWebsite:
		return c.Website
	case ChannelWhatsApp:
		return c.WhatsApp
	case ChannelPhone:
		return c.Phone
	case ChannelEmail:
		return c.Email
	default:
		return ""
	}
}
