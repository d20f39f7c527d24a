// Package templates holds the outreach message templates and salutation fillers.
package templates

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/service/outreach"
)

// Set is a template catalogue plus the fillers used for blank placeholders.
type Set struct {
	Templates []entity.MessageTemplate `json:"templates" yaml:"templates"`
	Fillers   outreach.Fillers         `json:"fillers" yaml:"fillers"`
}

// Default returns the built-in catalogue.
func Default() Set {
	return Set{
		Templates: []entity.MessageTemplate{
			{
				ID:    "first-contact",
				Label: "First Contact (Arabic)",
				Text:  "أ/ {{personName}} عامل إيه؟\n\nأنا {{myName}}، مصور أزياء. اتقابلنا في معرض {{event}} وخدت كارت حضرتك.\n\nحبيت أبقى على تواصل ولو في أي وقت حابب تطور شكل التصوير أو السوشيال عندكم أكون مبسوط أساعد.",
			},
			{
				ID:    "follow-up",
				Label: "Follow Up (Arabic)",
				Text:  "أ/ {{personName}}، كنت حابب أطمن لو حضرتك شوفت البورتفوليو اللي بعته؟\n\nلو فيه أي استفسار أو حابب ننسق سيشن تجريبية أنا موجود.",
			},
		},
		Fillers: outreach.DefaultFillers(),
	}
}

// Load returns the built-in set when path is empty, otherwise the file at path.
func Load(path string) (Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a YAML template set. Blank fillers keep their defaults.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read templates file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML template set.
func Parse(data []byte) (Set, error) {
	set := Set{Fillers: outreach.DefaultFillers()}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("decode templates: %w", err)
	}
	if len(set.Templates) == 0 {
		return Set{}, errors.New("template set has no templates")
	}

	seen := make(map[string]struct{}, len(set.Templates))
	for i, tmpl := range set.Templates {
		id := strings.TrimSpace(tmpl.ID)
		if id == "" {
			return Set{}, fmt.Errorf("template %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return Set{}, fmt.Errorf("duplicate template id %q", id)
		}
		seen[id] = struct{}{}
		set.Templates[i].ID = id
		if tmpl.Label == "" {
			set.Templates[i].Label = id
		}
	}

	defaults := outreach.DefaultFillers()
	if strings.TrimSpace(set.Fillers.PersonName) == "" {
		set.Fillers.PersonName = defaults.PersonName
	}
	if strings.TrimSpace(set.Fillers.CompanyName) == "" {
		set.Fillers.CompanyName = defaults.CompanyName
	}
	if strings.TrimSpace(set.Fillers.MyName) == "" {
		set.Fillers.MyName = defaults.MyName
	}
	if strings.TrimSpace(set.Fillers.Event) == "" {
		set.Fillers.Event = defaults.Event
	}
	return set, nil
}

// Find returns the template with the given id.
func (s Set) Find(id string) (entity.MessageTemplate, bool) {
	for _, tmpl := range s.Templates {
		if tmpl.ID == id {
			return tmpl, true
		}
	}
	return entity.MessageTemplate{}, false
}
