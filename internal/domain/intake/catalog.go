package intake

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/model"
)

//go:embed catalog
var catalogFS embed.FS

// DefaultLocale is the Japanese shop catalog.
const DefaultLocale = "ja"

// Literals are the exact texts that drive control flow.
type Literals struct {
	Start  []string `yaml:"start"`
	Cancel string   `yaml:"cancel"`
	Yes    string   `yaml:"yes"`
	No     string   `yaml:"no"`
}

// Prompts holds every text the bot can say. Confirm and StaffNotice are
// templates with {name} {phone} {product} {datetime} (and {id}) placeholders.
type Prompts struct {
	Cancelled     string `yaml:"cancelled"`
	AskName       string `yaml:"ask_name"`
	AskPhone      string `yaml:"ask_phone"`
	RetryPhone    string `yaml:"retry_phone"`
	AskProduct    string `yaml:"ask_product"`
	AskDateTime   string `yaml:"ask_datetime"`
	RetryDateTime string `yaml:"retry_datetime"`
	Confirm       string `yaml:"confirm"`
	Accepted      string `yaml:"accepted"`
	SelectEdit    string `yaml:"select_edit"`
	RateLimited   string `yaml:"rate_limited"`
	StaffNotice   string `yaml:"staff_notice"`
}

// Catalog maps steps and editable fields to what is sent to the user.
type Catalog struct {
	Locale         string             `yaml:"-"`
	Literals       Literals           `yaml:"literals"`
	Prompts        Prompts            `yaml:"prompts"`
	ConfirmOptions []model.QuickReply `yaml:"confirm_options"`
	EditOptions    []model.QuickReply `yaml:"edit_options"`
	EditPrompts    map[string]string  `yaml:"edit_prompts"`
}

// Locales lists the embedded catalogs.
func Locales() []string {
	entries, err := fs.ReadDir(catalogFS, "catalog")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			out = append(out, name)
		}
	}
	return out
}

// LoadCatalog reads one of the embedded catalogs.
func LoadCatalog(locale string) (*Catalog, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	data, err := fs.ReadFile(catalogFS, path.Join("catalog", locale+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownLocale, locale)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", locale, err)
	}
	c.Locale = locale
	return c, nil
}

// MustLoadCatalog is LoadCatalog for embedded catalogs known to be valid.
func MustLoadCatalog(locale string) *Catalog {
	c, err := LoadCatalog(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Literals.Start) == 0 || c.Literals.Cancel == "" || c.Literals.Yes == "" || c.Literals.No == "" {
		return fmt.Errorf("%w: literals start, cancel, yes and no are required", domain.ErrInvalidArgument)
	}
	if c.Literals.Yes == c.Literals.No {
		return fmt.Errorf("%w: yes and no literals must differ", domain.ErrInvalidArgument)
	}
	p := c.Prompts
	for key, v := range map[string]string{
		"cancelled":      p.Cancelled,
		"ask_name":       p.AskName,
		"ask_phone":      p.AskPhone,
		"retry_phone":    p.RetryPhone,
		"ask_product":    p.AskProduct,
		"ask_datetime":   p.AskDateTime,
		"retry_datetime": p.RetryDateTime,
		"confirm":        p.Confirm,
		"accepted":       p.Accepted,
		"select_edit":    p.SelectEdit,
		"rate_limited":   p.RateLimited,
		"staff_notice":   p.StaffNotice,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: prompt %q is empty", domain.ErrInvalidArgument, key)
		}
	}
	for _, f := range model.Fields {
		if strings.TrimSpace(c.EditPrompts[string(f)]) == "" {
			return fmt.Errorf("%w: edit prompt for %q is missing", domain.ErrInvalidArgument, f)
		}
	}
	if len(c.ConfirmOptions) == 0 || len(c.EditOptions) == 0 {
		return fmt.Errorf("%w: confirm and edit options are required", domain.ErrInvalidArgument)
	}
	for _, o := range slices.Concat(c.ConfirmOptions, c.EditOptions) {
		if o.Label == "" || o.Text == "" {
			return fmt.Errorf("%w: quick reply needs label and text", domain.ErrInvalidArgument)
		}
	}
	return nil
}

// IsStart reports whether text opens a new reservation.
func (c *Catalog) IsStart(text string) bool {
	return slices.Contains(c.Literals.Start, strings.TrimSpace(text))
}

// IsCancel reports whether text is the cancel literal.
func (c *Catalog) IsCancel(text string) bool {
	return strings.TrimSpace(text) == c.Literals.Cancel
}

// AskPrompt is the question sent when entering an ask step from the linear flow.
func (c *Catalog) AskPrompt(step model.Step) string {
	switch step {
	case model.StepAskName:
		return c.Prompts.AskName
	case model.StepAskPhone:
		return c.Prompts.AskPhone
	case model.StepAskProduct:
		return c.Prompts.AskProduct
	case model.StepAskDateTime:
		return c.Prompts.AskDateTime
	}
	return ""
}

// EditPrompt is the question sent after the user picked a field to change.
func (c *Catalog) EditPrompt(f model.Field) string {
	return c.EditPrompts[string(f)]
}

// Confirmation renders the summary with the yes/no options.
func (c *Catalog) Confirmation(rec model.Record) model.OutgoingMessage {
	return model.OutgoingMessage{
		Text:         recordReplacer(rec, "").Replace(c.Prompts.Confirm),
		QuickReplies: slices.Clone(c.ConfirmOptions),
	}
}

// EditMenu is the field choice sent when the user rejects the summary.
func (c *Catalog) EditMenu() model.OutgoingMessage {
	return model.OutgoingMessage{
		Text:         c.Prompts.SelectEdit,
		QuickReplies: slices.Clone(c.EditOptions),
	}
}

// StaffNotice renders the message staff receive for a handed-off reservation.
func (c *Catalog) StaffNotice(r *model.Reservation) string {
	rec := model.Record{Name: r.Name, Phone: r.Phone, Product: r.Product, DateTime: r.PickupAt}
	return recordReplacer(rec, r.ID).Replace(c.Prompts.StaffNotice)
}

// A single-pass replacer keeps user text containing placeholders verbatim.
func recordReplacer(rec model.Record, id string) *strings.Replacer {
	return strings.NewReplacer(
		"{id}", id,
		"{name}", rec.Name,
		"{phone}", rec.Phone,
		"{product}", rec.Product,
		"{datetime}", rec.DateTime,
	)
}
