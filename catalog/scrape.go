package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type DedupPolicy int

const (
	// Keep the course from the earliest list entry.
	KeepFirst DedupPolicy = iota
	// Keep the duplicate with the most sections, earliest on ties.
	KeepMostComplete
)

// ParseDedupPolicy maps the configured policy names "first" and "most-complete".
func ParseDedupPolicy(name string) (DedupPolicy, error) {
	switch name {
	case "", "first":
		return KeepFirst, nil
	case "most-complete":
		return KeepMostComplete, nil
	}
	return KeepFirst, fmt.Errorf("unknown dedup policy %q", name)
}

type Term struct {
	ID      string
	ListURL string
}

type SkippedCourse struct {
	Index int
	URL   string
	Err   error
}

type TermResult struct {
	Term       string
	Listed     int
	Courses    []Course
	Skipped    []SkippedCourse
	Duplicates int
}

type Scraper struct {
	Fetcher Fetcher
	// Detail pages fetched at once. Zero or one fetches sequentially in list order.
	Workers int
	Dedup   DedupPolicy
	Logger  *zerolog.Logger
}

func (s *Scraper) logger() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}

type outcome struct {
	course *Course
	err    error
}

func (s *Scraper) Scrape(ctx context.Context, term string, listURL string) (*TermResult, error) {
	logger := s.logger().With().Str("term", term).Logger()

	base, err := url.Parse(listURL)
	if err != nil {
		return nil, err
	}

	listing, err := s.Fetcher.Fetch(ctx, listURL)
	if err != nil {
		return nil, err
	}
	document, err := goquery.NewDocumentFromReader(bytes.NewReader(listing))
	if err != nil {
		return nil, err
	}

	links := ParseCourseList(document)
	total := len(links)
	logger.Info().Int("total", total).Msg("found course listings")

	detailURLs := make([]string, total)
	outcomes := make([]outcome, total)

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, link := range links {
		reference, err := url.Parse(link)
		if err != nil {
			outcomes[i].err = unparsable("invalid detail link %q", link)
			detailURLs[i] = link
			continue
		}
		detailURL := base.ResolveReference(reference).String()
		detailURLs[i] = detailURL

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			course, err := s.scrapeCourse(groupCtx, detailURL)
			if errors.Is(err, ErrSchemaDrift) {
				return &CourseError{URL: detailURL, Err: err}
			}
			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				outcomes[i].err = err
				return nil
			}

			outcomes[i].course = course
			logger.Info().
				Int("index", i+1).
				Int("total", total).
				Str("dept", course.Dept).
				Int("code", course.Code).
				Str("title", course.Title).
				Msg("parsed course")
			s.checkTimePatterns(&logger, course)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &TermResult{Term: term, Listed: total}
	var parsed []Course
	for i, o := range outcomes {
		if o.err != nil {
			logger.Warn().Err(o.err).Int("index", i+1).Str("url", detailURLs[i]).Msg("skipping course")
			result.Skipped = append(result.Skipped, SkippedCourse{Index: i, URL: detailURLs[i], Err: o.err})
			continue
		}
		course := *o.course
		course.Term = term
		parsed = append(parsed, course)
	}
	result.Courses, result.Duplicates = Dedupe(parsed, s.Dedup)

	logger.Info().
		Int("courses", len(result.Courses)).
		Int("skipped", len(result.Skipped)).
		Int("duplicates", result.Duplicates).
		Msg("finished term")
	return result, nil
}

func (s *Scraper) scrapeCourse(ctx context.Context, detailURL string) (*Course, error) {
	page, err := s.Fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return nil, err
	}
	document, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, unparsable("%v", err)
	}
	return ParseCourse(document)
}

func (s *Scraper) checkTimePatterns(logger *zerolog.Logger, course *Course) {
	for _, section := range course.Sections {
		for _, pattern := range section.TimePatterns {
			if _, _, err := ParseTimePattern(pattern); err != nil {
				logger.Debug().Err(err).Int("section", section.Number).Msg("unrecognized time pattern")
			}
		}
	}
}

// ScrapeTerms runs Scrape for every term in order and stops at the first error.
func (s *Scraper) ScrapeTerms(ctx context.Context, terms []Term) ([]*TermResult, error) {
	var results []*TermResult
	for _, term := range terms {
		result, err := s.Scrape(ctx, term.ID, term.ListURL)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func AllCourses(results []*TermResult) []Course {
	var courses []Course
	for _, result := range results {
		courses = append(courses, result.Courses...)
	}
	return courses
}

// Dedupe keeps one course per department and number. Courses must be in list
// order; the returned slice keeps the position of each key's first occurrence.
func Dedupe(courses []Course, policy DedupPolicy) ([]Course, int) {
	positions := make(map[string]int)
	var kept []Course
	duplicates := 0

	for _, course := range courses {
		key := course.Key()
		position, seen := positions[key]
		if !seen {
			positions[key] = len(kept)
			kept = append(kept, course)
			continue
		}

		duplicates++
		if policy == KeepMostComplete && len(course.Sections) > len(kept[position].Sections) {
			kept[position] = course
		}
	}
	return kept, duplicates
}
