package catalog

import (
	"github.com/rs/zerolog/log"
)

type attribute struct {
	kind ValueKind
	text func(*Course) *string
	flag func(*Course) *bool
	list func(*Course) *[]string
}

func textAttribute(f func(*Course) *string) attribute {
	return attribute{kind: KindText, text: f}
}

func flagAttribute(f func(*Course) *bool) attribute {
	return attribute{kind: KindFlag, flag: f}
}

func listAttribute(f func(*Course) *[]string) attribute {
	return attribute{kind: KindList, list: f}
}

// Every field name a specifics entry may produce. Anything else is schema drift.
var attributes = map[string]attribute{
	"deptnote":       listAttribute(func(c *Course) *[]string { return &c.DepartmentNote }),
	"divattr":        listAttribute(func(c *Course) *[]string { return &c.DivisionAttributes }),
	"distnote":       listAttribute(func(c *Course) *[]string { return &c.DegreeRequirements }),
	"enrollmentpref": listAttribute(func(c *Course) *[]string { return &c.EnrollmentPreference }),
	"matlfee":        listAttribute(func(c *Course) *[]string { return &c.MaterialFee }),
	"prerequisites":  listAttribute(func(c *Course) *[]string { return &c.Prerequisites }),
	"rqmtseval":      listAttribute(func(c *Course) *[]string { return &c.EvaluationRequirements }),
	"extrainfo":      listAttribute(func(c *Course) *[]string { return &c.ExtraInfo }),
	"crosslistings":  listAttribute(func(c *Course) *[]string { return &c.CrossListings }),

	"type":               textAttribute(func(c *Course) *string { return &c.CourseType }),
	"coursetype":         textAttribute(func(c *Course) *string { return &c.CourseType }),
	"limit":              textAttribute(func(c *Course) *string { return &c.EnrollmentLimit }),
	"enrollmentlimit":    textAttribute(func(c *Course) *string { return &c.EnrollmentLimit }),
	"expected":           textAttribute(func(c *Course) *string { return &c.ExpectedEnrollment }),
	"expectedenrollment": textAttribute(func(c *Course) *string { return &c.ExpectedEnrollment }),

	"passfail":    flagAttribute(func(c *Course) *bool { return &c.PassFailOption }),
	"fifthcourse": flagAttribute(func(c *Course) *bool { return &c.FifthCourseOption }),
}

// courseBuilder accumulates parsed pieces of one detail page. Build hands out
// the finished Course; the builder must not be used afterwards.
type courseBuilder struct {
	course Course
	seen   map[string]bool
}

func newCourseBuilder() *courseBuilder {
	return &courseBuilder{seen: make(map[string]bool)}
}

func (b *courseBuilder) header(dept string, code int, title string, requirements []DistributionRequirement) {
	b.course.Dept = dept
	b.course.Code = code
	b.course.Title = title
	b.course.DistributionRequirements = requirements
}

func (b *courseBuilder) description(description string) {
	b.course.Description = description
}

func (b *courseBuilder) apply(field Field) error {
	attr, okay := attributes[field.Name]
	if !okay {
		return schemaDrift("unknown field %q", field.Name)
	}
	if attr.kind != field.Value.Kind {
		return schemaDrift("field %q has unexpected kind", field.Name)
	}

	switch attr.kind {
	case KindList:
		target := attr.list(&b.course)
		*target = append(*target, field.Value.List...)
	case KindText:
		target := attr.text(&b.course)
		if b.seen[field.Name] && *target != field.Value.Text {
			log.Debug().Str("field", field.Name).Str("old", *target).Str("new", field.Value.Text).Msg("overwriting field")
		}
		*target = field.Value.Text
	case KindFlag:
		target := attr.flag(&b.course)
		if b.seen[field.Name] && *target != field.Value.Flag {
			log.Debug().Str("field", field.Name).Bool("new", field.Value.Flag).Msg("overwriting field")
		}
		*target = field.Value.Flag
	}
	b.seen[field.Name] = true
	return nil
}

func (b *courseBuilder) sections(sections []Section) {
	b.course.Sections = sections

	seen := make(map[string]bool)
	b.course.Instructors = []string{}
	for _, section := range sections {
		for _, instructor := range section.Instructors {
			if seen[instructor] {
				continue
			}
			seen[instructor] = true
			b.course.Instructors = append(b.course.Instructors, instructor)
		}
	}
}

func (b *courseBuilder) build() *Course {
	course := b.course
	return &course
}
