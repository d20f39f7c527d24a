package entity

// MessageTemplate is an outreach message with {{placeholder}} tokens.
type MessageTemplate struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Text  string `json:"text" yaml:"text"`
}
