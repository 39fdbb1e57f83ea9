package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miyuchina/catalog/catalog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLoader() *Loader {
	logger := zerolog.Nop()
	return NewLoader(&logger)
}

func testCourses() []catalog.Course {
	return []catalog.Course{
		{
			Dept:                     "CSCI",
			Code:                     134,
			Term:                     "1193",
			Title:                    "Introduction to Computer Science",
			Description:              "Programming in Python.",
			DistributionRequirements: []catalog.DistributionRequirement{catalog.DivisionIII, catalog.QuantitativeFormalReasoning},
			EnrollmentPreference:     []string{"first-years", "sophomores", ""},
			Prerequisites:            []string{"none"},
			CourseType:               "Lecture",
			EnrollmentLimit:          "90",
			PassFailOption:           true,
			Instructors:              []string{"Iris Howley", "Jeannie Albrecht"},
			Sections: []catalog.Section{
				{Number: 1234, Type: "LEC", Instructors: []string{"Iris Howley"}, TimePatterns: []string{"MWF 10:00 am - 10:50 am"}},
				{Number: 1235, Type: "LAB", Instructors: []string{"Jeannie Albrecht"}, TimePatterns: []string{"TBA"}},
			},
		},
		{
			Dept:  "AFR",
			Code:  200,
			Term:  "1193",
			Title: "Black Radical Thought",
			Sections: []catalog.Section{
				{Number: 2001, Type: "SEM"},
			},
		},
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	result, err := testLoader().Load(ctx, store, testCourses())
	require.NoError(t, err)
	require.Equal(t, LoadResult{Courses: 2, Sections: 3}, result)

	courses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)

	csci := courses[1]
	require.Equal(t, "CSCI", csci.Dept)
	require.Equal(t, "Division III;;Quantitative/Formal Reasoning", *csci.DistributionRequirements)
	require.Equal(t, []string{"first-years", "sophomores", ""}, SplitList(csci.EnrollmentPreference))
	require.Equal(t, []string{"Iris Howley", "Jeannie Albrecht"}, SplitList(csci.Instructors))
	require.True(t, csci.PassFailOption)
	require.False(t, csci.FifthCourseOption)
	require.Nil(t, csci.MaterialFee)
	require.Nil(t, csci.ExpectedEnrollment)

	sections, err := store.ListSections(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	require.Equal(t, 1234, sections[0].Number)
	require.Equal(t, csci.Id, sections[0].CourseId)
	require.Equal(t, courses[0].Id, sections[2].CourseId)
	require.Nil(t, sections[2].Instructors)

	counts, err := store.CountByTerm(ctx)
	require.NoError(t, err)
	require.Equal(t, []TermCount{{Term: "1193", Courses: 2, Sections: 3}}, counts)
}

func TestLoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)
	loader := testLoader()

	_, err := loader.Load(ctx, store, testCourses())
	require.NoError(t, err)
	firstCourses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	firstSections, err := store.ListSections(ctx)
	require.NoError(t, err)

	_, err = loader.Load(ctx, store, testCourses())
	require.NoError(t, err)
	secondCourses, err := store.ListCourses(ctx)
	require.NoError(t, err)
	secondSections, err := store.ListSections(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(firstCourses, secondCourses); diff != "" {
		t.Errorf("courses changed on reload (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstSections, secondSections); diff != "" {
		t.Errorf("sections changed on reload (-first +second):\n%s", diff)
	}
}

func TestLoadUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)
	loader := testLoader()

	_, err := loader.Load(ctx, store, testCourses())
	require.NoError(t, err)
	before, err := store.ListCourses(ctx)
	require.NoError(t, err)

	updated := testCourses()
	updated[0].Title = "Intro to CS"
	updated[0].Sections[1].Type = "LEC"
	_, err = loader.Load(ctx, store, updated)
	require.NoError(t, err)

	after, err := store.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, after, 2)
	require.Equal(t, before[1].Id, after[1].Id)
	require.Equal(t, "Intro to CS", *after[1].Title)

	sections, err := store.ListSections(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	require.Equal(t, "LEC", *sections[1].Type)
}

func TestLoadRejectsIntegrityViolations(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(courses []catalog.Course)
	}{
		{
			name:   "delimiter in list element",
			mutate: func(courses []catalog.Course) { courses[1].Prerequisites = []string{"CSCI 134;;CSCI 136"} },
		},
		{
			name:   "delimiter in section time pattern",
			mutate: func(courses []catalog.Course) { courses[1].Sections[0].TimePatterns = []string{"M;;W"} },
		},
		{
			name:   "missing dept",
			mutate: func(courses []catalog.Course) { courses[1].Dept = "" },
		},
		{
			name:   "missing section number",
			mutate: func(courses []catalog.Course) { courses[1].Sections[0].Number = 0 },
		},
		{
			name:   "section number reused",
			mutate: func(courses []catalog.Course) { courses[1].Sections[0].Number = 1234 },
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			store := openTestSQLite(t)

			courses := testCourses()
			test.mutate(courses)
			_, err := testLoader().Load(ctx, store, courses)
			require.ErrorIs(t, err, ErrIntegrity)

			// The valid first course is not written either.
			stored, err := store.ListCourses(ctx)
			require.NoError(t, err)
			require.Empty(t, stored)
		})
	}
}

type failingStore struct {
	tx *failingTx
}

type failingTx struct {
	courses    int
	committed  bool
	rolledBack bool
}

var errWrite = errors.New("write failed")

func (s *failingStore) Begin(ctx context.Context) (Tx, error) {
	return s.tx, nil
}

func (t *failingTx) UpsertCourse(ctx context.Context, course CourseRow) (int64, error) {
	t.courses++
	return int64(t.courses), nil
}

func (t *failingTx) UpsertSections(ctx context.Context, sections []SectionRow) error {
	if t.courses > 1 {
		return errWrite
	}
	return nil
}

func (t *failingTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *failingTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

func TestLoadRollsBackOnWriteFailure(t *testing.T) {
	store := &failingStore{tx: &failingTx{}}

	_, err := testLoader().Load(context.Background(), store, testCourses())
	require.ErrorIs(t, err, errWrite)
	require.True(t, store.tx.rolledBack)
	require.False(t, store.tx.committed)
}
