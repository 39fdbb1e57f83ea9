package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCourseList(t *testing.T) {
	links := ParseCourseList(loadDocument(t, "testdata/list.html"))
	require.Equal(t, []string{
		"/course/?crse=CSCI134",
		"https://catalog.example.edu/course/?crse=MATH134",
		"/course/?crse=ARTH101",
	}, links)
}
