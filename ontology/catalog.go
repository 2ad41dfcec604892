// Package ontology holds the disease reference data and the entity
// linker that resolves free-text disease mentions and KCD codes to
// canonical entries. The catalog is loaded once at startup and is
// immutable afterwards, so a single instance is safe to share across
// concurrent pipeline runs.
package ontology

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Disease is one canonical ontology entry.
type Disease struct {
	// StandardName is the canonical identifier used for deduplication in
	// the graph (disease node IDs hash this name).
	StandardName string `yaml:"standard_name" json:"standard_name"`

	KoreanNames  []string `yaml:"korean_names" json:"korean_names,omitempty"`
	EnglishNames []string `yaml:"english_names" json:"english_names,omitempty"`

	// KCDCodes lists the codes classified under this entry.
	KCDCodes []string `yaml:"kcd_codes" json:"kcd_codes,omitempty"`

	// Synonyms are non-canonical surface forms seen in policy text.
	Synonyms []string `yaml:"synonyms" json:"synonyms,omitempty"`

	Category string `yaml:"category" json:"category,omitempty"`
	Severity string `yaml:"severity" json:"severity,omitempty"`
}

// Catalog is the indexed, immutable form of the reference data.
type Catalog struct {
	diseases []Disease

	// nameIndex maps normalized korean/english/standard names to entries.
	nameIndex map[string]*Disease

	// codeIndex maps KCD codes to entries.
	codeIndex map[string]*Disease

	// synonymIndex maps normalized synonyms to entries.
	synonymIndex map[string]*Disease
}

// NewCatalog builds a Catalog from entries. Duplicate names across
// entries are resolved first-entry-wins.
func NewCatalog(diseases []Disease) *Catalog {
	c := &Catalog{
		diseases:     append([]Disease(nil), diseases...),
		nameIndex:    make(map[string]*Disease),
		codeIndex:    make(map[string]*Disease),
		synonymIndex: make(map[string]*Disease),
	}

	for i := range c.diseases {
		d := &c.diseases[i]
		c.indexName(d.StandardName, d)
		for _, name := range d.KoreanNames {
			c.indexName(name, d)
		}
		for _, name := range d.EnglishNames {
			c.indexName(name, d)
		}
		for _, code := range d.KCDCodes {
			key := strings.ToUpper(strings.TrimSpace(code))
			if _, ok := c.codeIndex[key]; !ok && key != "" {
				c.codeIndex[key] = d
			}
		}
		for _, syn := range d.Synonyms {
			key := normalize(syn)
			if _, ok := c.synonymIndex[key]; !ok && key != "" {
				c.synonymIndex[key] = d
			}
		}
	}

	return c
}

func (c *Catalog) indexName(name string, d *Disease) {
	key := normalize(name)
	if key == "" {
		return
	}
	if _, ok := c.nameIndex[key]; !ok {
		c.nameIndex[key] = d
	}
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.diseases) }

// catalogFile is the YAML layout of the reference data file.
type catalogFile struct {
	Diseases []Disease `yaml:"diseases"`
}

// LoadCatalog reads the reference data from a YAML file and builds the
// indexed catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ontology file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse ontology file: %w", err)
	}
	if len(file.Diseases) == 0 {
		return nil, fmt.Errorf("ontology file %s contains no diseases", path)
	}

	return NewCatalog(file.Diseases), nil
}

// normalize lowercases and strips whitespace so lookups are insensitive
// to case and OCR spacing.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
