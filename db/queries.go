package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const courseColumns = `dept, code, term, title, description, pass_fail_option, fifth_course_option, department_note, division_attributes, degree_requirements, enrollment_preference, material_fee, prerequisites, evaluation_requirements, extra_info, cross_listings, instructors, distribution_requirements, expected_enrollment, enrollment_limit, course_type`
const courseUpdates = `title=excluded.title, description=excluded.description, pass_fail_option=excluded.pass_fail_option, fifth_course_option=excluded.fifth_course_option, department_note=excluded.department_note, division_attributes=excluded.division_attributes, degree_requirements=excluded.degree_requirements, enrollment_preference=excluded.enrollment_preference, material_fee=excluded.material_fee, prerequisites=excluded.prerequisites, evaluation_requirements=excluded.evaluation_requirements, extra_info=excluded.extra_info, cross_listings=excluded.cross_listings, instructors=excluded.instructors, distribution_requirements=excluded.distribution_requirements, expected_enrollment=excluded.expected_enrollment, enrollment_limit=excluded.enrollment_limit, course_type=excluded.course_type`

const sectionColumns = `number, type, instructors, time_patterns, course_id`
const sectionUpdates = `type=excluded.type, instructors=excluded.instructors, time_patterns=excluded.time_patterns, course_id=excluded.course_id`

const upsertCourse = `INSERT INTO course (` + courseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21) ON CONFLICT (dept, code, term) DO UPDATE SET ` + courseUpdates + ` RETURNING id`
const upsertSection = `INSERT INTO section (` + sectionColumns + `) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (number) DO UPDATE SET ` + sectionUpdates

const listCourses = `SELECT id, ` + courseColumns + ` FROM course ORDER BY term, dept, code`
const listSections = `SELECT id, ` + sectionColumns + ` FROM section ORDER BY number`
const countByTerm = `SELECT course.term, COUNT(DISTINCT course.id), COUNT(section.id) FROM course LEFT JOIN section ON section.course_id = course.id GROUP BY course.term ORDER BY course.term`

type postgresTx struct {
	tx pgx.Tx
}

func (d *Database) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &postgresTx{tx: tx}, nil
}

func (t *postgresTx) UpsertCourse(ctx context.Context, course CourseRow) (int64, error) {
	var id int64
	if err := t.tx.QueryRow(ctx, upsertCourse, course.args()...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *postgresTx) UpsertSections(ctx context.Context, sections []SectionRow) error {
	if len(sections) == 0 {
		return nil
	}

	batch := pgx.Batch{}
	for _, section := range sections {
		batch.Queue(upsertSection, section.args()...)
	}

	if err := t.tx.SendBatch(ctx, &batch).Close(); err != nil {
		return err
	}

	return nil
}

func (t *postgresTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (d *Database) ListCourses(ctx context.Context) ([]CourseRow, error) {
	rows, err := d.Pool.Query(ctx, listCourses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []CourseRow
	for rows.Next() {
		var course CourseRow
		if err := rows.Scan(course.scanTargets()...); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (d *Database) ListSections(ctx context.Context) ([]SectionRow, error) {
	rows, err := d.Pool.Query(ctx, listSections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []SectionRow
	for rows.Next() {
		var section SectionRow
		if err := rows.Scan(section.scanTargets()...); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}

func (d *Database) CountByTerm(ctx context.Context) ([]TermCount, error) {
	rows, err := d.Pool.Query(ctx, countByTerm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []TermCount
	for rows.Next() {
		var count TermCount
		if err := rows.Scan(&count.Term, &count.Courses, &count.Sections); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
