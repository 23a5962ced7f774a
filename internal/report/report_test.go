package report

import (
	"bytes"
	"testing"
	"time"

	"Mansoor88-6/project-timer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestGrouping(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	d := day("2026-03-04")

	assert.Equal(t, "2026-03-04", GetGroupKey(d, GroupByDay))
	assert.Equal(t, "2026-W10", GetGroupKey(d, GroupByWeek))
	assert.Equal(t, "2026-03-W2", GetGroupKey(d, GroupByWeekOfMonth))
	assert.Equal(t, "", GetGroupKey(d, GroupByNone))

	assert.Equal(t, "Wednesday, 04 Mar 2026", GetGroupTitle(d, GroupByDay))
	assert.Equal(t, "Mar 02 - Mar 08, 2026", GetGroupTitle(d, GroupByWeek))

	// The first week of March 2026 starts on Sunday the 1st.
	first := day("2026-03-01")
	assert.Equal(t, 1, GetWeekOfMonth(first))
	assert.Equal(t, "Mar 01 - Mar 01, 2026", GetGroupTitle(first, GroupByWeekOfMonth))
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy("")
	require.NoError(t, err)
	assert.Equal(t, GroupByNone, g)

	g, err = ParseGroupBy("weekly")
	require.NoError(t, err)
	assert.Equal(t, GroupByWeek, g)

	_, err = ParseGroupBy("hourly")
	assert.Error(t, err)
}

func sampleEntries() []*models.TimeEntry {
	return []*models.TimeEntry{
		{ID: 1, ProjectID: 7, Description: "Work on Acme Site", Date: "2026-03-02", Duration: 1.5},
		{ID: 2, ProjectID: 9, Description: "planning", Date: "2026-03-02", Duration: 0.25},
		{ID: 3, ProjectID: 7, Description: "fixes", Date: "2026-03-10", Duration: 0.03},
		{ID: 4, ProjectID: 4, Description: "gone", Date: "2026-03-11", Duration: 1},
	}
}

var sampleProjects = []models.Project{{ID: 7, Name: "Acme Site"}, {ID: 9, Name: "Internal"}}

func TestSummarize_Weekly(t *testing.T) {
	s, err := Summarize(sampleEntries(), sampleProjects, GroupByWeek)
	require.NoError(t, err)

	require.Len(t, s.Groups, 2)
	assert.Equal(t, "2026-W11", s.Groups[0].Key)
	assert.Equal(t, 1.03, s.Groups[0].Hours)
	assert.Equal(t, "2026-W10", s.Groups[1].Key)
	assert.Equal(t, 1.75, s.Groups[1].Hours)
	assert.Equal(t, 2.78, s.TotalHours)

	require.Len(t, s.Projects, 3)
	assert.Equal(t, "Acme Site", s.Projects[0].Name)
	assert.Equal(t, 1.53, s.Projects[0].Hours)
	assert.Equal(t, "project #4", s.Projects[1].Name)
	assert.Equal(t, "Internal", s.Projects[2].Name)
}

func TestSummarize_None(t *testing.T) {
	s, err := Summarize(sampleEntries(), sampleProjects, GroupByNone)
	require.NoError(t, err)

	require.Len(t, s.Groups, 1)
	assert.Len(t, s.Groups[0].Rows, 4)
	assert.Empty(t, s.Groups[0].Title)
}

func TestSummarize_InvalidDate(t *testing.T) {
	_, err := Summarize([]*models.TimeEntry{{ID: 1, Date: "14/03/2026"}}, nil, GroupByDay)
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	s, err := Summarize(sampleEntries(), sampleProjects, GroupByDay)
	require.NoError(t, err)

	data, err := RenderPDF(s, "2026-03-01", "2026-03-31")

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderPDF_Empty(t *testing.T) {
	s, err := Summarize(nil, nil, GroupByNone)
	require.NoError(t, err)

	data, err := RenderPDF(s, "2026-03-01", "2026-03-31")

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
