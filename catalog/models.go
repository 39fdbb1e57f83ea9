package catalog

import "fmt"

type DistributionRequirement string

const (
	DivisionI                   DistributionRequirement = "Division I"
	DivisionII                  DistributionRequirement = "Division II"
	DivisionIII                 DistributionRequirement = "Division III"
	WritingIntensive            DistributionRequirement = "Writing Intensive"
	QuantitativeFormalReasoning DistributionRequirement = "Quantitative/Formal Reasoning"
	DifferencePowerEquity       DistributionRequirement = "Difference, Power and Equity"
)

type Section struct {
	Number       int      `json:"number" validate:"required"`
	Type         string   `json:"type"`
	Instructors  []string `json:"instructors" validate:"dive,nodelim"`
	TimePatterns []string `json:"time_patterns" validate:"dive,nodelim"`
}

type Course struct {
	Dept        string `json:"dept" validate:"required"`
	Code        int    `json:"code" validate:"required"`
	Term        string `json:"term"`
	Title       string `json:"title"`
	Description string `json:"description"`

	DistributionRequirements []DistributionRequirement `json:"distribution_requirements" validate:"dive,nodelim"`

	DepartmentNote         []string `json:"department_note" validate:"dive,nodelim"`
	DivisionAttributes     []string `json:"division_attributes" validate:"dive,nodelim"`
	DegreeRequirements     []string `json:"degree_requirements" validate:"dive,nodelim"`
	EnrollmentPreference   []string `json:"enrollment_preference" validate:"dive,nodelim"`
	MaterialFee            []string `json:"material_fee" validate:"dive,nodelim"`
	Prerequisites          []string `json:"prerequisites" validate:"dive,nodelim"`
	EvaluationRequirements []string `json:"evaluation_requirements" validate:"dive,nodelim"`
	ExtraInfo              []string `json:"extra_info" validate:"dive,nodelim"`
	CrossListings          []string `json:"cross_listings" validate:"dive,nodelim"`

	CourseType         string `json:"course_type"`
	EnrollmentLimit    string `json:"enrollment_limit"`
	ExpectedEnrollment string `json:"expected_enrollment"`

	PassFailOption    bool `json:"pass_fail_option"`
	FifthCourseOption bool `json:"fifth_course_option"`

	// Union of every section's instructors in first-seen order.
	Instructors []string  `json:"instructors" validate:"dive,nodelim"`
	Sections    []Section `json:"sections" validate:"dive"`
}

// Key identifies a course within one term.
func (c Course) Key() string {
	const keyTemplate = "%v#%v"
	return fmt.Sprintf(keyTemplate, c.Dept, c.Code)
}
