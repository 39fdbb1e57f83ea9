package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const termOptionSelector = `select[name="strm"] option`

type TermOption struct {
	ID   string
	Name string
}

// ParseTermOptions reads the term choices offered by the catalog search form.
// Options without a value, such as the placeholder, are skipped.
func ParseTermOptions(document *goquery.Document) ([]TermOption, error) {
	options := document.Find(termOptionSelector)
	if options.Length() == 0 {
		return nil, unparsable("no term options in search form")
	}

	var terms []TermOption
	options.Each(func(i int, option *goquery.Selection) {
		id, _ := option.Attr("value")
		id = strings.TrimSpace(id)
		if id == "" {
			log.Debug().Int("index", i).Msg("skipping term option without a value")
			return
		}
		terms = append(terms, TermOption{ID: id, Name: strings.TrimSpace(option.Text())})
	})
	return terms, nil
}
