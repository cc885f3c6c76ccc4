package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/akolanti/PersonaRAG/internal/domain/commonModels"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	ErrNotPermitted = errors.New("persona not permitted for tradition")
	ErrEmptyCatalog = errors.New("persona catalog has no traditions")
)

var languageSuffix = regexp.MustCompile(`_([a-z]{2})$`)

type Persona struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Tradition      string   `yaml:"-" json:"tradition"`
	DeityGroup     string   `yaml:"deity_group" json:"deityGroup"`
	Books          []string `yaml:"books" json:"books"`
	Gender         string   `yaml:"gender" json:"gender"`
	Description    string   `yaml:"description" json:"description"`
	Style          string   `yaml:"style" json:"style,omitempty"`
	Traits         []string `yaml:"traits" json:"traits,omitempty"`
	CitationFormat string   `yaml:"citation_format" json:"citationFormat"`
}

type Tradition struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Books    []string  `yaml:"books" json:"books,omitempty"`
	Personas []Persona `yaml:"personas" json:"-"`
}

type Catalog struct {
	CitationFormat string      `yaml:"citation_format"`
	Traditions     []Tradition `yaml:"traditions"`
}

// NotPermittedError lists what the caller may talk to instead.
type NotPermittedError struct {
	Persona      string
	Tradition    string
	Alternatives []Persona
}

func (e *NotPermittedError) Error() string {
	return fmt.Sprintf("persona %q is not available for tradition %q", e.Persona, e.Tradition)
}

func (e *NotPermittedError) Is(target error) bool { return target == ErrNotPermitted }

// Policy answers which personas and books a user may reach. Read-only after
// construction.
type Policy struct {
	traditions []Tradition
	byID       map[string]Persona
	byTrad     map[string]Tradition
	citation   string
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Policy, error) {
	raw := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading persona catalog: %w", err)
		}
		raw = b
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parsing persona catalog: %w", err)
	}
	return NewPolicy(c)
}

func NewPolicy(c Catalog) (*Policy, error) {
	if len(c.Traditions) == 0 {
		return nil, ErrEmptyCatalog
	}
	citation := c.CitationFormat
	if citation == "" {
		citation = "(Source: <title>)"
	}
	p := &Policy{byID: map[string]Persona{}, byTrad: map[string]Tradition{}, citation: citation}
	for _, t := range c.Traditions {
		t.ID = strings.ToLower(t.ID)
		if _, dup := p.byTrad[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tradition %q", t.ID)
		}
		for i := range t.Personas {
			per := &t.Personas[i]
			per.ID = strings.ToLower(per.ID)
			per.Tradition = t.ID
			if per.DeityGroup == "" {
				per.DeityGroup = per.ID
			}
			if per.CitationFormat == "" {
				per.CitationFormat = citation
			}
			if _, dup := p.byID[per.ID]; dup {
				return nil, fmt.Errorf("duplicate persona %q", per.ID)
			}
			p.byID[per.ID] = *per
		}
		p.byTrad[t.ID] = t
		p.traditions = append(p.traditions, t)
	}
	return p, nil
}

// BaseName strips a two-letter language variant such as "_hi".
func BaseName(persona string) string {
	return languageSuffix.ReplaceAllString(strings.ToLower(strings.TrimSpace(persona)), "")
}

// Language returns the variant code of a persona name, "en" when absent.
func Language(persona string) string {
	if m := languageSuffix.FindStringSubmatch(strings.ToLower(strings.TrimSpace(persona))); m != nil {
		return m[1]
	}
	return "en"
}

// Permit resolves personaID for user. Guests may use any persona, including
// ones missing from the catalog, which get a generic voice and no book scope.
func (p *Policy) Permit(user chatModel.User, personaID string) (Persona, error) {
	id := BaseName(personaID)
	per, known := p.byID[id]

	if user.IsGuest() {
		if !known {
			return p.generic(id), nil
		}
		return per, nil
	}

	tradition := strings.ToLower(user.Tradition)
	if !known || per.Tradition != tradition {
		return Persona{}, &NotPermittedError{Persona: id, Tradition: tradition, Alternatives: p.Personas(tradition)}
	}
	return per, nil
}

func (p *Policy) generic(id string) Persona {
	name := strings.ReplaceAll(id, "_", " ")
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return Persona{
		ID:             id,
		Name:           name,
		DeityGroup:     id,
		Description:    "Spiritual guide",
		CitationFormat: p.citation,
	}
}

// Filters scopes retrieval to a persona. Guests search unfiltered.
func (p *Policy) Filters(user chatModel.User, per Persona) commonModels.Filters {
	if user.IsGuest() {
		return commonModels.Filters{}
	}
	return commonModels.Filters{
		Tradition:  per.Tradition,
		DeityGroup: per.DeityGroup,
		Books:      append([]string(nil), per.Books...),
	}
}

// Personas lists a tradition's personas in catalog order. An empty or guest
// tradition lists every persona.
func (p *Policy) Personas(tradition string) []Persona {
	tradition = strings.ToLower(tradition)
	var out []Persona
	for _, t := range p.traditions {
		if tradition != "" && tradition != chatModel.GuestTradition && t.ID != tradition {
			continue
		}
		for _, per := range t.Personas {
			out = append(out, p.byID[per.ID])
		}
	}
	return out
}

func (p *Policy) Alternatives(tradition string) []Persona {
	return p.Personas(tradition)
}

func (p *Policy) Traditions() []Tradition {
	out := make([]Tradition, len(p.traditions))
	copy(out, p.traditions)
	return out
}

func (p *Policy) Lookup(personaID string) (Persona, bool) {
	per, ok := p.byID[BaseName(personaID)]
	return per, ok
}

// BookIndex matches a document title against known book names, longest name
// first, and reports the owning tradition and every deity group that cites it.
func (p *Policy) BookIndex(title string) (commonModels.BookEntry, bool) {
	lower := strings.ToLower(title)

	type candidate struct {
		book      string
		tradition string
	}
	var candidates []candidate
	for _, t := range p.traditions {
		seen := map[string]bool{}
		books := append([]string(nil), t.Books...)
		for _, per := range t.Personas {
			books = append(books, per.Books...)
		}
		for _, b := range books {
			if seen[b] {
				continue
			}
			seen[b] = true
			candidates = append(candidates, candidate{book: b, tradition: t.ID})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return len(candidates[i].book) > len(candidates[j].book) })

	for _, c := range candidates {
		if !strings.Contains(lower, strings.ToLower(c.book)) {
			continue
		}
		entry := commonModels.BookEntry{Book: c.book, Tradition: c.tradition}
		for _, per := range p.byTrad[c.tradition].Personas {
			for _, b := range per.Books {
				if b == c.book {
					entry.DeityGroups = append(entry.DeityGroups, p.byID[per.ID].DeityGroup)
					break
				}
			}
		}
		return entry, true
	}
	return commonModels.BookEntry{}, false
}
