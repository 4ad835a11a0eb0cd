package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testNavOptions = NavOptions{ReportSuffixes: []string{"summary"}}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		location string
		expected []string
	}{
		{"", []string{}},
		{"/", []string{}},
		{"/A", []string{"A"}},
		{"/A/", []string{"A"}},
		{"/A/B", []string{"A", "B"}},
		{"/A//B", []string{"A", "", "B"}},
		{"/Event%20A/Day%201", []string{"Event A", "Day 1"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SplitPath(tt.location), "location %q", tt.location)
	}
}

func TestLocationOfRoundTrip(t *testing.T) {
	segments := []string{"Event A", "Day#1", "x.csv"}
	assert.Equal(t, "/Event%20A/Day%231/x.csv", LocationOf(segments))
	assert.Equal(t, segments, SplitPath(LocationOf(segments)))
	assert.Equal(t, "/", LocationOf(nil))
}

func TestNavigate(t *testing.T) {
	tree, _ := BuildTree(keysOf(
		"EventA/Day1/summary.xlsx",
		"EventA/Day1/task_image.png",
		"EventA/Day2/notes.txt",
		"EventA/readme.txt",
		"EventB/final_summary.csv",
	))

	tests := []struct {
		name     string
		segments []string
		mode     ViewMode
		key      string
		found    bool
	}{
		{"root", []string{}, ModeRootListing, "", true},
		{"mixed folder", []string{"EventA"}, ModeFolderListing, "", true},
		{"files only", []string{"EventA", "Day1"}, ModeGroupedFileListing, "", true},
		{"existing file", []string{"EventA", "readme.txt"}, ModeRawFileView, "EventA/readme.txt", true},
		{"missing file", []string{"EventA", "gone.txt"}, ModeRawFileView, "EventA/gone.txt", false},
		{"report xlsx", []string{"EventA", "Day1", "summary"}, ModeReportView, "EventA/Day1/summary.xlsx", true},
		{"report csv", []string{"EventB", "final_summary"}, ModeReportView, "EventB/final_summary.csv", true},
		{"missing report", []string{"EventA", "Day2", "summary"}, ModeReportView, "EventA/Day2/summary.xlsx", false},
		{"missing folder", []string{"Nope"}, ModeFolderListing, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := Navigate(tree, tt.segments, testNavOptions)
			assert.Equal(t, tt.mode, route.Mode)
			assert.Equal(t, tt.key, route.Key)
			assert.Equal(t, tt.found, route.Found)
			assert.Equal(t, tt.segments, route.Path)
		})
	}
}

func TestNavigateMissingFolderIsEmpty(t *testing.T) {
	tree, _ := BuildTree(keysOf("A/x.txt"))
	route := Navigate(tree, []string{"A", "B", "C"}, testNavOptions)
	assert.Equal(t, ModeFolderListing, route.Mode)
	assert.Empty(t, route.Subtree)
}

func TestIsReportName(t *testing.T) {
	suffixes := []string{"summary", "report"}

	assert.True(t, IsReportName("summary", suffixes))
	assert.True(t, IsReportName("Day1_Summary", suffixes))
	assert.True(t, IsReportName("weekly-report", suffixes))
	assert.False(t, IsReportName("summary.xlsx", suffixes))
	assert.False(t, IsReportName("notes", suffixes))
	assert.False(t, IsReportName("summary", nil))
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("a.txt"))
	assert.True(t, HasExtension("archive.tar.gz"))
	assert.False(t, HasExtension("summary"))
	assert.False(t, HasExtension(".hidden"))
	assert.False(t, HasExtension("trailing."))
}

func TestActionFor(t *testing.T) {
	tests := map[string]FileAction{
		"notes.txt":    ActionInline,
		"log":          ActionInline,
		"page.HTML":    ActionEmbed,
		"plot.png":     ActionImage,
		"summary.xlsx": ActionDownload,
		"data.csv":     ActionDownload,
		"bundle.zip":   ActionDownload,
	}
	for name, expected := range tests {
		assert.Equal(t, expected, ActionFor(name), name)
	}
	assert.Equal(t, "embed", ActionEmbed.String())
}

func TestReportSegment(t *testing.T) {
	suffixes := []string{"summary"}

	assert.Equal(t, "summary", ReportSegment("summary.xlsx", suffixes))
	assert.Equal(t, "Day1_slim_summary", ReportSegment("Day1_slim_summary.csv", suffixes))
	assert.Equal(t, "", ReportSegment("summary.xls", suffixes))
	assert.Equal(t, "", ReportSegment("data.xlsx", suffixes))
}
