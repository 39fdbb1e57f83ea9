package db

import (
	"context"
	"database/sql"
	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

const upsertCourseSQLite = `INSERT INTO course (` + courseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (dept, code, term) DO UPDATE SET ` + courseUpdates + ` RETURNING id`
const upsertSectionSQLite = `INSERT INTO section (` + sectionColumns + `) VALUES (?, ?, ?, ?, ?) ON CONFLICT (number) DO UPDATE SET ` + sectionUpdates

// SQLite is a file or in-memory store with the same schema as the Postgres database.
type SQLite struct {
	DB *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{DB: db}, nil
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (s *SQLite) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

func (t *sqliteTx) UpsertCourse(ctx context.Context, course CourseRow) (int64, error) {
	var id int64
	if err := t.tx.QueryRowContext(ctx, upsertCourseSQLite, course.args()...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (t *sqliteTx) UpsertSections(ctx context.Context, sections []SectionRow) error {
	if len(sections) == 0 {
		return nil
	}

	statement, err := t.tx.PrepareContext(ctx, upsertSectionSQLite)
	if err != nil {
		return err
	}
	defer statement.Close()

	for _, section := range sections {
		if _, err := statement.ExecContext(ctx, section.args()...); err != nil {
			return err
		}
	}
	return nil
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

func (s *SQLite) ListCourses(ctx context.Context) ([]CourseRow, error) {
	rows, err := s.DB.QueryContext(ctx, listCourses)
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

func (s *SQLite) ListSections(ctx context.Context) ([]SectionRow, error) {
	rows, err := s.DB.QueryContext(ctx, listSections)
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

func (s *SQLite) CountByTerm(ctx context.Context) ([]TermCount, error) {
	rows, err := s.DB.QueryContext(ctx, countByTerm)
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
