package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const listItemSelector = ".catalog_table li"

// ParseCourseList returns detail page links in page order. The first list item
// is the table legend.
func ParseCourseList(document *goquery.Document) []string {
	var links []string

	items := document.Find(listItemSelector)
	items.Each(func(i int, item *goquery.Selection) {
		if i == 0 {
			return
		}

		link, exists := item.Find("div").First().Find("a").First().Attr("href")
		link = strings.TrimSpace(link)
		if !exists || link == "" {
			log.Warn().Int("index", i).Msg("unable to determine course detail link")
			return
		}
		links = append(links, link)
	})

	return links
}
