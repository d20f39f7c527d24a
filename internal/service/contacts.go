package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/cardcrm/internal/dto"
	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/extraction"
	"github.com/octobees/cardcrm/internal/imaging"
	"github.com/octobees/cardcrm/internal/repository"
	"github.com/octobees/cardcrm/internal/service/links"
	"github.com/octobees/cardcrm/internal/service/outreach"
	"github.com/octobees/cardcrm/internal/service/scoring"
	"github.com/octobees/cardcrm/internal/templates"
)

var (
	// ErrNoNumber is returned when a message cannot be routed because the contact has no usable number.
	ErrNoNumber = errors.New("contact has no usable phone number")
	// ErrTemplateNotFound is returned for an unknown template id.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrInvalidImport is returned when an import payload is not a JSON array of contacts.
	ErrInvalidImport = errors.New("invalid import payload")
	// ErrEmptyMessage is returned when neither text nor a template id is given.
	ErrEmptyMessage = errors.New("message text or template_id is required")
)

// Placeholder values for records created without a name.
const (
	DefaultCompanyName = "شركة جديدة"
	DefaultPersonName  = "جهة اتصال"
)

// ContactStore is the collection the service works on.
type ContactStore interface {
	All() []entity.Contact
	Get(id string) (entity.Contact, error)
	Upsert(ctx context.Context, c entity.Contact) error
	Update(ctx context.Context, id string, fn func(*entity.Contact)) (entity.Contact, error)
	ReplaceAll(ctx context.Context, contacts []entity.Contact) error
	Delete(ctx context.Context, id string) error
}

// BoardColumn groups contacts sharing a pipeline status.
type BoardColumn struct {
	Status   entity.Status    `json:"status"`
	Contacts []entity.Contact `json:"contacts"`
}

// ScanResult is a contact created from a card photo plus fields worth a second look.
type ScanResult struct {
	Contact entity.Contact `json:"contact"`
	Issues  []FieldIssue   `json:"issues,omitempty"`
	Score   scoring.Result `json:"score"`
}

// SendResult is the routing decision and, after a dispatch, the updated contact.
type SendResult struct {
	Decision outreach.Decision `json:"decision"`
	Contact  entity.Contact    `json:"contact"`
}

// ContactsService implements ingestion, edits, search and outreach on the contact collection.
type ContactsService struct {
	store     ContactStore
	router    *outreach.Router
	templates templates.Set
	session   outreach.Session
	extractor extraction.Extractor
	advisor   extraction.Advisor
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// ContactsOption configures optional dependencies.
type ContactsOption func(*ContactsService)

// WithExtractor sets the card extraction backend.
func WithExtractor(e extraction.Extractor) ContactsOption {
	return func(s *ContactsService) {
		s.extractor = e
	}
}

// WithAdvisor sets the strategy backend.
func WithAdvisor(a extraction.Advisor) ContactsOption {
	return func(s *ContactsService) {
		s.advisor = a
	}
}

// WithSession sets the sender name and event used for placeholders.
func WithSession(session outreach.Session) ContactsOption {
	return func(s *ContactsService) {
		s.session = session
	}
}

// WithLogger overrides the no-op logger.
func WithLogger(logger *zap.Logger) ContactsOption {
	return func(s *ContactsService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ContactsOption {
	return func(s *ContactsService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(newID func() string) ContactsOption {
	return func(s *ContactsService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewContactsService wires the service on top of a store and a template set.
func NewContactsService(store ContactStore, set templates.Set, opts ...ContactsOption) *ContactsService {
	s := &ContactsService{
		store:     store,
		router:    outreach.NewRouter(set.Fillers),
		templates: set,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Templates returns the configured template set.
func (s *ContactsService) Templates() templates.Set {
	return s.templates
}

// List returns contacts whose company or person name contains q, ignoring case.
func (s *ContactsService) List(q string) []entity.Contact {
	all := s.store.All()
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return all
	}
	matches := make([]entity.Contact, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.CompanyName), needle) || strings.Contains(strings.ToLower(c.PersonName), needle) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Board groups the collection by status in pipeline order.
func (s *ContactsService) Board() []BoardColumn {
	byStatus := make(map[entity.Status][]entity.Contact, len(entity.Statuses))
	for _, c := range s.store.All() {
		byStatus[c.Status] = append(byStatus[c.Status], c)
	}
	columns := make([]BoardColumn, 0, len(entity.Statuses))
	for _, status := range entity.Statuses {
		contacts := byStatus[status]
		if contacts == nil {
			contacts = []entity.Contact{}
		}
		columns = append(columns, BoardColumn{Status: status, Contacts: contacts})
	}
	return columns
}

// Get returns one contact.
func (s *ContactsService) Get(id string) (entity.Contact, error) {
	return s.store.Get(id)
}

// Create adds a contact entered by hand.
func (s *ContactsService) Create(ctx context.Context, in dto.ContactInput) (entity.Contact, error) {
	c := s.newContact(entity.ExtractedCard{
		CompanyName: in.CompanyName,
		PersonName:  in.PersonName,
		Phone:       in.Phone,
		WhatsApp:    in.WhatsApp,
		Email:       in.Email,
		Instagram:   in.Instagram,
		Facebook:    in.Facebook,
		Telegram:    in.Telegram,
		Website:     in.Website,
		Address:     in.Address,
		Category:    in.Category,
		Field:       in.Field,
	})
	if in.Status != "" {
		c.Status = entity.ParseStatus(in.Status)
	}
	c.Notes = in.Notes
	if err := s.store.Upsert(ctx, c); err != nil {
		return c, fmt.Errorf("save contact: %w", err)
	}
	return c, nil
}

// CreateFromCard adds a contact from an extraction result.
func (s *ContactsService) CreateFromCard(ctx context.Context, card entity.ExtractedCard) (entity.Contact, error) {
	c := s.newContact(card)
	if err := s.store.Upsert(ctx, c); err != nil {
		return c, fmt.Errorf("save contact: %w", err)
	}
	return c, nil
}

// Scan prepares a card photo, extracts it and stores the new contact.
// Nothing is stored when preparation or extraction fails.
func (s *ContactsService) Scan(ctx context.Context, image []byte, contentType string) (ScanResult, error) {
	if s.extractor == nil {
		return ScanResult{}, extraction.ErrNotConfigured
	}
	prepared, mimeType, err := imaging.Prepare(image, contentType)
	if err != nil {
		return ScanResult{}, err
	}
	card, err := s.extractor.Extract(ctx, prepared, mimeType)
	if err != nil {
		s.logger.Warn("card extraction failed", zap.Error(err))
		return ScanResult{}, fmt.Errorf("extract card: %w", err)
	}
	c, err := s.CreateFromCard(ctx, card)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{Contact: c, Issues: ReviewCard(card), Score: scoring.Compute(c)}, nil
}

// Update applies a field-level edit. id and createdAt never change.
func (s *ContactsService) Update(ctx context.Context, id string, patch dto.ContactPatch) (entity.Contact, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return entity.Contact{}, err
	}
	if patch.Empty() {
		return c, nil
	}

	updated, err := s.store.Update(ctx, id, func(c *entity.Contact) { applyPatch(c, patch) })
	if errors.Is(err, repository.ErrContactNotFound) {
		return entity.Contact{}, err
	}
	if err != nil {
		return updated, fmt.Errorf("save contact: %w", err)
	}
	return updated, nil
}

func applyPatch(c *entity.Contact, patch dto.ContactPatch) {
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&c.CompanyName, patch.CompanyName)
	assign(&c.PersonName, patch.PersonName)
	assign(&c.Phone, patch.Phone)
	assign(&c.WhatsApp, patch.WhatsApp)
	assign(&c.Email, patch.Email)
	assign(&c.Instagram, patch.Instagram)
	assign(&c.Facebook, patch.Facebook)
	assign(&c.Telegram, patch.Telegram)
	assign(&c.Website, patch.Website)
	assign(&c.Address, patch.Address)
	assign(&c.Field, patch.Field)
	assign(&c.Notes, patch.Notes)
	assign(&c.AIStrategy, patch.AIStrategy)
	if patch.Category != nil {
		c.Category = entity.ParseCategory(*patch.Category)
	}
	if patch.Status != nil {
		c.Status = entity.ParseStatus(*patch.Status)
	}
}

// Delete removes a contact.
func (s *ContactsService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Links resolves every channel of a contact.
func (s *ContactsService) Links(id string) ([]links.Row, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return links.ResolveAll(c), nil
}

// Score rates how reachable a contact is.
func (s *ContactsService) Score(id string) (scoring.Result, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return scoring.Result{}, err
	}
	return scoring.Compute(c), nil
}

// Send renders a message for a contact and routes it. Only a dispatch updates
// the contact; a NoNumber outcome is returned together with ErrNoNumber.
func (s *ContactsService) Send(ctx context.Context, id string, req dto.SendRequest) (SendResult, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return SendResult{}, err
	}

	text, err := s.messageText(req)
	if err != nil {
		return SendResult{}, err
	}

	var decision outreach.Decision
	if strings.TrimSpace(req.Number) != "" {
		decision, err = s.router.Choose(c, s.router.Render(text, c, s.session), req.Number)
		if err != nil {
			return SendResult{Contact: c}, err
		}
	} else {
		decision = s.router.Route(c, text, s.session)
	}

	switch decision.Outcome {
	case outreach.OutcomeNoNumber:
		return SendResult{Decision: decision, Contact: c}, ErrNoNumber
	case outreach.OutcomeChoose:
		return SendResult{Decision: decision, Contact: c}, nil
	}

	sentAt := s.now().UTC()
	updated, err := s.store.Update(ctx, id, func(c *entity.Contact) { *c = outreach.RecordSend(*c, sentAt) })
	if errors.Is(err, repository.ErrContactNotFound) {
		return SendResult{Decision: decision, Contact: c}, err
	}
	if err != nil {
		return SendResult{Decision: decision, Contact: updated}, fmt.Errorf("save contact: %w", err)
	}
	return SendResult{Decision: decision, Contact: updated}, nil
}

// GenerateStrategy asks the advisor for an outreach plan and stores it on the contact.
func (s *ContactsService) GenerateStrategy(ctx context.Context, id string) (entity.Contact, error) {
	if s.advisor == nil {
		return entity.Contact{}, extraction.ErrNotConfigured
	}
	c, err := s.store.Get(id)
	if err != nil {
		return entity.Contact{}, err
	}
	plan, err := s.advisor.Strategy(ctx, c)
	if err != nil {
		s.logger.Warn("strategy generation failed", zap.String("contact_id", id), zap.Error(err))
		return entity.Contact{}, fmt.Errorf("generate strategy: %w", err)
	}
	updated, err := s.store.Update(ctx, id, func(c *entity.Contact) { c.AIStrategy = plan })
	if errors.Is(err, repository.ErrContactNotFound) {
		return entity.Contact{}, err
	}
	if err != nil {
		return updated, fmt.Errorf("save contact: %w", err)
	}
	return updated, nil
}

// Export returns the collection as indented JSON.
func (s *ContactsService) Export() ([]byte, error) {
	return marshalContacts(s.store.All())
}

// Import prepends the contacts in data, in file order, to the collection.
func (s *ContactsService) Import(ctx context.Context, data []byte) (dto.ImportSummary, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return dto.ImportSummary{}, fmt.Errorf("%w: expected a JSON array", ErrInvalidImport)
	}
	var imported []entity.Contact
	if err := json.Unmarshal(trimmed, &imported); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	now := s.now().UTC()
	for i := range imported {
		if strings.TrimSpace(imported[i].ID) == "" {
			imported[i].ID = s.newID()
		}
		if imported[i].CreatedAt.IsZero() {
			imported[i].CreatedAt = now
		}
	}

	existing := s.store.All()
	merged := make([]entity.Contact, 0, len(imported)+len(existing))
	merged = append(merged, imported...)
	merged = append(merged, existing...)
	if err := s.store.ReplaceAll(ctx, merged); err != nil {
		return dto.ImportSummary{}, fmt.Errorf("save contacts: %w", err)
	}
	s.logger.Info("contacts imported", zap.Int("imported", len(imported)), zap.Int("total", len(merged)))
	return dto.ImportSummary{Imported: len(imported), Total: len(merged)}, nil
}

// BackupMailto builds a mailto URI carrying a readable summary and the full export.
func (s *ContactsService) BackupMailto() (string, error) {
	all := s.store.All()
	full, err := marshalContacts(all)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(all))
	for _, c := range all {
		lines = append(lines, fmt.Sprintf("• %s (%s): %s", c.CompanyName, c.PersonName, c.Phone))
	}

	var body strings.Builder
	fmt.Fprintf(&body, "قائمة العملاء بتاريخ %s\n\n", s.now().Format("2006-01-02 15:04"))
	body.WriteString("ملخص:\n")
	body.WriteString(strings.Join(lines, "\n"))
	body.WriteString("\n\nالبيانات التقنية (للاستعادة):\n")
	body.Write(full)

	return "mailto:?subject=" + links.EscapeComponent("CRM Backup") + "&body=" + links.EscapeComponent(body.String()), nil
}

func (s *ContactsService) messageText(req dto.SendRequest) (string, error) {
	if strings.TrimSpace(req.Text) != "" {
		return req.Text, nil
	}
	id := strings.TrimSpace(req.TemplateID)
	if id == "" {
		return "", ErrEmptyMessage
	}
	tmpl, ok := s.templates.Find(id)
	if !ok {
		return "", ErrTemplateNotFound
	}
	return tmpl.Text, nil
}

func (s *ContactsService) newContact(card entity.ExtractedCard) entity.Contact {
	whatsapp := card.WhatsApp
	if links.IsEmpty(whatsapp) {
		whatsapp = card.Phone
	}
	return entity.Contact{
		ID:          s.newID(),
		CompanyName: orDefault(card.CompanyName, DefaultCompanyName),
		PersonName:  orDefault(card.PersonName, DefaultPersonName),
		Phone:       card.Phone,
		WhatsApp:    whatsapp,
		Email:       card.Email,
		Instagram:   card.Instagram,
		Facebook:    card.Facebook,
		Telegram:    card.Telegram,
		Website:     card.Website,
		Address:     card.Address,
		Category:    entity.ParseCategory(card.Category),
		Field:       card.Field,
		Status:      entity.StatusNew,
		CreatedAt:   s.now().UTC(),
	}
}

func marshalContacts(contacts []entity.Contact) ([]byte, error) {
	if contacts == nil {
		contacts = []entity.Contact{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode contacts: %w", err)
	}
	return data, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
