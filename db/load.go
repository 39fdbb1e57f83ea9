package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/miyuchina/catalog/catalog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LoadResult struct {
	Courses  int
	Sections int
}

type Loader struct {
	Validate *validator.Validate
	Logger   *zerolog.Logger
}

func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation("nodelim", func(field validator.FieldLevel) bool {
		return !strings.Contains(field.Field().String(), ListDelimiter)
	})
	return validate
}

func NewLoader(logger *zerolog.Logger) *Loader {
	return &Loader{Validate: NewValidator(), Logger: logger}
}

func (l *Loader) logger() *zerolog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return &log.Logger
}

type pendingCourse struct {
	course   CourseRow
	sections []SectionRow
}

// prepare checks the whole batch before anything is written.
func (l *Loader) prepare(courses []catalog.Course) ([]pendingCourse, error) {
	validate := l.Validate
	if validate == nil {
		validate = NewValidator()
	}

	pending := make([]pendingCourse, 0, len(courses))
	sectionOwners := make(map[int]string)
	for i, course := range courses {
		if err := validate.Struct(course); err != nil {
			return nil, fmt.Errorf("%w: course %d (%v): %v", ErrIntegrity, i, course.Key(), err)
		}

		row, err := NewCourseRow(course)
		if err != nil {
			return nil, err
		}

		sections := make([]SectionRow, 0, len(course.Sections))
		for _, section := range course.Sections {
			if owner, okay := sectionOwners[section.Number]; okay {
				return nil, fmt.Errorf("%w: section %v belongs to both %v and %v", ErrIntegrity, section.Number, owner, course.Key())
			}
			sectionOwners[section.Number] = course.Key()

			sectionRow, err := NewSectionRow(section)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", course.Key(), err)
			}
			sections = append(sections, sectionRow)
		}

		pending = append(pending, pendingCourse{course: row, sections: sections})
	}
	return pending, nil
}

// Load upserts every course and its sections in one transaction. Nothing is
// committed unless every write succeeds.
func (l *Loader) Load(ctx context.Context, store Store, courses []catalog.Course) (LoadResult, error) {
	pending, err := l.prepare(courses)
	if err != nil {
		return LoadResult{}, err
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("beginning load: %w", err)
	}

	result, err := l.write(ctx, tx, pending)
	if err != nil {
		if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			l.logger().Error().Err(rollbackErr).Msg("Unable to roll back load")
		}
		return LoadResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return LoadResult{}, fmt.Errorf("committing load: %w", err)
	}

	l.logger().Info().
		Int("courses", result.Courses).
		Int("sections", result.Sections).
		Msg("Loaded courses")
	return result, nil
}

func (l *Loader) write(ctx context.Context, tx Tx, pending []pendingCourse) (LoadResult, error) {
	var result LoadResult
	for _, p := range pending {
		id, err := tx.UpsertCourse(ctx, p.course)
		if err != nil {
			return LoadResult{}, fmt.Errorf("upserting %v#%v (%v): %w", p.course.Dept, p.course.Code, p.course.Term, err)
		}

		for i := range p.sections {
			p.sections[i].CourseId = id
		}
		if err := tx.UpsertSections(ctx, p.sections); err != nil {
			return LoadResult{}, fmt.Errorf("upserting sections of %v#%v: %w", p.course.Dept, p.course.Code, err)
		}

		l.logger().Debug().
			Str("dept", p.course.Dept).
			Int("code", p.course.Code).
			Int64("id", id).
			Int("sections", len(p.sections)).
			Msg("Upserted course")

		result.Courses++
		result.Sections += len(p.sections)
	}
	return result, nil
}
