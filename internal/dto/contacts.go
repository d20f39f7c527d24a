package dto

// ContactInput holds the fields accepted when creating a contact by hand.
type ContactInput struct {
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
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

// ContactPatch is a field-level edit. Nil fields are left unchanged.
type ContactPatch struct {
	CompanyName *string `json:"companyName"`
	PersonName  *string `json:"personName"`
	Phone       *string `json:"phone"`
	WhatsApp    *string `json:"whatsapp"`
	Email       *string `json:"email"`
	Instagram   *string `json:"instagram"`
	Facebook    *string `json:"facebook"`
	Telegram    *string `json:"telegram"`
	Website     *string `json:"website"`
	Address     *string `json:"address"`
	Category    *string `json:"category"`
	Field       *string `json:"field"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
	AIStrategy  *string `json:"aiStrategy"`
}

// Empty reports whether the patch changes nothing.
func (p ContactPatch) Empty() bool {
	return p.CompanyName == nil && p.PersonName == nil && p.Phone == nil && p.WhatsApp == nil &&
		p.Email == nil && p.Instagram == nil && p.Facebook == nil && p.Telegram == nil &&
		p.Website == nil && p.Address == nil && p.Category == nil && p.Field == nil &&
		p.Status == nil && p.Notes == nil && p.AIStrategy == nil
}

// SendRequest asks for a message to be routed to a contact.
// Text wins over TemplateID; Number picks one of several candidates.
type SendRequest struct {
	TemplateID string `json:"template_id"`
	Text       string `json:"text"`
	Number     string `json:"number"`
}

// ImportSummary reports the outcome of a bulk import.
type ImportSummary struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}
