package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/miyuchina/catalog/catalog"
	"gopkg.in/yaml.v3"
)

type TermEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	// Overrides the list URL built from the term id.
	URL string `yaml:"url,omitempty"`
}

type TermsFile struct {
	Terms []TermEntry `yaml:"terms"`
}

func ReadTerms(path string) (*TermsFile, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file TermsFile
	if err := yaml.Unmarshal(encoded, &file); err != nil {
		return nil, fmt.Errorf("parsing %v: %w", path, err)
	}
	for i, term := range file.Terms {
		if term.ID == "" {
			return nil, fmt.Errorf("parsing %v: term %d has no id", path, i)
		}
	}
	return &file, nil
}

func WriteTerms(path string, file *TermsFile) error {
	encoded, err := yaml.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

// ListURL returns the catalog list page for a term by setting its strm
// parameter on the configured list URL.
func ListURL(listURL, term string) (string, error) {
	parsed, err := url.Parse(listURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("strm", term)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Select returns the scrape targets for the given ids, or for every term in
// the file when ids is empty. Ids missing from the file use the default list URL.
func (f *TermsFile) Select(listURL string, ids []string) ([]catalog.Term, error) {
	entries := f.Terms
	if len(ids) > 0 {
		known := make(map[string]TermEntry, len(f.Terms))
		for _, entry := range f.Terms {
			known[entry.ID] = entry
		}

		entries = make([]TermEntry, 0, len(ids))
		for _, id := range ids {
			entry, okay := known[id]
			if !okay {
				entry = TermEntry{ID: id}
			}
			entries = append(entries, entry)
		}
	}

	terms := make([]catalog.Term, 0, len(entries))
	for _, entry := range entries {
		target := entry.URL
		if target == "" {
			built, err := ListURL(listURL, entry.ID)
			if err != nil {
				return nil, err
			}
			target = built
		}
		terms = append(terms, catalog.Term{ID: entry.ID, ListURL: target})
	}
	return terms, nil
}
