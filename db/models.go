package db

import (
	"fmt"

	"github.com/miyuchina/catalog/catalog"
)

// CourseRow is a course as stored. List columns hold JoinList output.
type CourseRow struct {
	Id                       int64
	Dept                     string
	Code                     int
	Term                     string
	Title                    *string
	Description              *string
	PassFailOption           bool
	FifthCourseOption        bool
	DepartmentNote           *string
	DivisionAttributes       *string
	DegreeRequirements       *string
	EnrollmentPreference     *string
	MaterialFee              *string
	Prerequisites            *string
	EvaluationRequirements   *string
	ExtraInfo                *string
	CrossListings            *string
	Instructors              *string
	DistributionRequirements *string
	ExpectedEnrollment       *string
	EnrollmentLimit          *string
	CourseType               *string
}

type SectionRow struct {
	Id           int64
	Number       int
	Type         *string
	Instructors  *string
	TimePatterns *string
	CourseId     int64
}

func NewCourseRow(course catalog.Course) (CourseRow, error) {
	row := CourseRow{
		Dept:               course.Dept,
		Code:               course.Code,
		Term:               course.Term,
		Title:              optionalText(course.Title),
		Description:        optionalText(course.Description),
		PassFailOption:     course.PassFailOption,
		FifthCourseOption:  course.FifthCourseOption,
		ExpectedEnrollment: optionalText(course.ExpectedEnrollment),
		EnrollmentLimit:    optionalText(course.EnrollmentLimit),
		CourseType:         optionalText(course.CourseType),
	}

	requirements := make([]string, len(course.DistributionRequirements))
	for i, requirement := range course.DistributionRequirements {
		requirements[i] = string(requirement)
	}

	lists := []struct {
		column string
		list   []string
		target **string
	}{
		{"department_note", course.DepartmentNote, &row.DepartmentNote},
		{"division_attributes", course.DivisionAttributes, &row.DivisionAttributes},
		{"degree_requirements", course.DegreeRequirements, &row.DegreeRequirements},
		{"enrollment_preference", course.EnrollmentPreference, &row.EnrollmentPreference},
		{"material_fee", course.MaterialFee, &row.MaterialFee},
		{"prerequisites", course.Prerequisites, &row.Prerequisites},
		{"evaluation_requirements", course.EvaluationRequirements, &row.EvaluationRequirements},
		{"extra_info", course.ExtraInfo, &row.ExtraInfo},
		{"cross_listings", course.CrossListings, &row.CrossListings},
		{"instructors", course.Instructors, &row.Instructors},
		{"distribution_requirements", requirements, &row.DistributionRequirements},
	}
	for _, list := range lists {
		joined, err := JoinList(list.list)
		if err != nil {
			return CourseRow{}, fmt.Errorf("%v %v: %w", course.Key(), list.column, err)
		}
		*list.target = joined
	}

	return row, nil
}

// NewSectionRow builds a section row. CourseId is assigned once the parent is stored.
func NewSectionRow(section catalog.Section) (SectionRow, error) {
	instructors, err := JoinList(section.Instructors)
	if err != nil {
		return SectionRow{}, fmt.Errorf("section %v instructors: %w", section.Number, err)
	}
	timePatterns, err := JoinList(section.TimePatterns)
	if err != nil {
		return SectionRow{}, fmt.Errorf("section %v time_patterns: %w", section.Number, err)
	}

	return SectionRow{
		Number:       section.Number,
		Type:         optionalText(section.Type),
		Instructors:  instructors,
		TimePatterns: timePatterns,
	}, nil
}

func (r CourseRow) args() []any {
	return []any{
		r.Dept,
		r.Code,
		r.Term,
		r.Title,
		r.Description,
		r.PassFailOption,
		r.FifthCourseOption,
		r.DepartmentNote,
		r.DivisionAttributes,
		r.DegreeRequirements,
		r.EnrollmentPreference,
		r.MaterialFee,
		r.Prerequisites,
		r.EvaluationRequirements,
		r.ExtraInfo,
		r.CrossListings,
		r.Instructors,
		r.DistributionRequirements,
		r.ExpectedEnrollment,
		r.EnrollmentLimit,
		r.CourseType,
	}
}

func (r *CourseRow) scanTargets() []any {
	return append([]any{&r.Id}, []any{
		&r.Dept,
		&r.Code,
		&r.Term,
		&r.Title,
		&r.Description,
		&r.PassFailOption,
		&r.FifthCourseOption,
		&r.DepartmentNote,
		&r.DivisionAttributes,
		&r.DegreeRequirements,
		&r.EnrollmentPreference,
		&r.MaterialFee,
		&r.Prerequisites,
		&r.EvaluationRequirements,
		&r.ExtraInfo,
		&r.CrossListings,
		&r.Instructors,
		&r.DistributionRequirements,
		&r.ExpectedEnrollment,
		&r.EnrollmentLimit,
		&r.CourseType,
	}...)
}

func (r SectionRow) args() []any {
	return []any{r.Number, r.Type, r.Instructors, r.TimePatterns, r.CourseId}
}

func (r *SectionRow) scanTargets() []any {
	return []any{&r.Id, &r.Number, &r.Type, &r.Instructors, &r.TimePatterns, &r.CourseId}
}

// TermCount is the number of stored courses and sections for one term.
type TermCount struct {
	Term     string
	Courses  int
	Sections int
}
