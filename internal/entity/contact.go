package entity

import (
	"encoding/json"
	"strings"
	"time"
)

// Category classifies the business behind a card.
type Category string

// Supported categories.
const (
	CategoryBrand    Category = "Brand"
	CategoryFactory  Category = "Factory"
	CategoryExport   Category = "Export"
	CategoryWorkshop Category = "Workshop"
	CategoryOther    Category = "Other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBrand, CategoryFactory, CategoryExport, CategoryWorkshop, CategoryOther}

// Status is the pipeline stage of a contact.
type Status string

// Supported pipeline statuses.
const (
	StatusNew        Status = "New"
	StatusContacted  Status = "Contacted"
	StatusInterested Status = "Interested"
	StatusMeeting    Status = "Meeting"
	StatusDealClosed Status = "Deal Closed"
	StatusCold       Status = "Cold"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusNew, StatusContacted, StatusInterested, StatusMeeting, StatusDealClosed, StatusCold}

// ParseCategory maps free text onto a known category, falling back to Other.
func ParseCategory(value string) Category {
	value = strings.TrimSpace(value)
	for _, c := range Categories {
		if strings.EqualFold(value, string(c)) {
			return c
		}
	}
	return CategoryOther
}

// ParseStatus maps free text onto a known status, falling back to New.
func ParseStatus(value string) Status {
	value = strings.TrimSpace(value)
	for _, s := range Statuses {
		if strings.EqualFold(value, string(s)) {
			return s
		}
	}
	return StatusNew
}

// UnmarshalJSON coerces unknown or non-string values to Other.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*c = CategoryOther
		return nil
	}
	*c = ParseCategory(raw)
	return nil
}

// UnmarshalJSON coerces unknown or non-string values to New.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StatusNew
		return nil
	}
	*s = ParseStatus(raw)
	return nil
}

// Contact is one business-card derived record. Channel fields hold the raw
// text as captured and are only normalized when used.
type Contact struct {
	ID              string     `json:"id"`
	CompanyName     string     `json:"companyName"`
	PersonName      string     `json:"personName"`
	Phone           string     `json:"phone"`
	WhatsApp        string     `json:"whatsapp"`
	Email           string     `json:"email"`
	Instagram       string     `json:"instagram"`
	Facebook        string     `json:"facebook,omitempty"`
	Telegram        string     `json:"telegram,omitempty"`
	Website         string     `json:"website,omitempty"`
	Address         string     `json:"address"`
	Category        Category   `json:"category"`
	Field           string     `json:"field,omitempty"`
	Status          Status     `json:"status"`
	Notes           string     `json:"notes"`
	AIStrategy      string     `json:"aiStrategy,omitempty"`
	LastContactDate *time.Time `json:"lastContactDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// UnmarshalJSON fills in enum defaults for records that omit category or status.
func (c *Contact) UnmarshalJSON(data []byte) error {
	type plain Contact
	decoded := plain{Category: CategoryOther, Status: StatusNew}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = Contact(decoded)
	return nil
}

// ExtractedCard is the record shape returned by the extraction service.
// Every field may be empty.
type ExtractedCard struct {
	CompanyName string `json:"companyName"`
	PersonName  string `json:"personName"`
	Phone       string `json:"phone"`
	WhatsApp    string `json:"whatsapp"`
	Email       string `json:"email"`
	Instagram   string `json:"instagram"`
	Facebook    string `json:"facebook"`
	Telegram    string `json:"telegram"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	Category    string `json:"category"`
	Field       string `json:"field"`
}
