package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"talentmatch/resume-engine/internal/models"
)

var testNow = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func TestComputeExperienceYears(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.ExperienceEntry
		want    float64
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    0,
		},
		{
			name: "overlapping intervals count once",
			entries: []models.ExperienceEntry{
				{Title: "Engineer", StartDate: "2019-01", EndDate: "2020-01"},
				{Title: "Engineer", StartDate: "2019-06", EndDate: "2020-06"},
			},
			want: 1.5,
		},
		{
			name: "disjoint intervals sum",
			entries: []models.ExperienceEntry{
				{Title: "Engineer", StartDate: "Jan 2015", EndDate: "Dec 2015"},
				{Title: "Engineer", StartDate: "Jan 2018", EndDate: "Dec 2018"},
			},
			want: 2,
		},
		{
			name: "ongoing role ends at reference time",
			entries: []models.ExperienceEntry{
				{Title: "Engineer", StartDate: "2025-04", EndDate: "Present"},
			},
			want: 1,
		},
		{
			name: "empty end date treated as ongoing",
			entries: []models.ExperienceEntry{
				{Title: "Engineer", StartDate: "2025-04"},
			},
			want: 1,
		},
		{
			name: "year-only range spans whole years",
			entries: []models.ExperienceEntry{
				{Title: "Engineer", StartDate: "2020", EndDate: "2021"},
			},
			want: 2,
		},
		{
			name: "undated entries contribute nothing",
			entries: []models.ExperienceEntry{
				{Title: "Engineer"},
				{Title: "Engineer", StartDate: "garbled", EndDate: "text"},
			},
			want: 0,
		},
		{
			name: "mixed date formats merge",
			entries: []models.ExperienceEntry{
				{Title: "Engineer", StartDate: "Mar 2019", EndDate: "2020-02"},
				{Title: "Engineer", StartDate: "03/2020", EndDate: "Feb 2021"},
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeExperienceYears(tt.entries, testNow)
			assert.InDelta(t, tt.want, got, 0.05)
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in    string
		isEnd bool
		want  time.Time
		ok    bool
	}{
		{"Jan 2020", false, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"January 2020", false, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"Sept 2021", false, time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC), true},
		{"2020-07", false, time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"07/2020", false, time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC), true},
		{"2020", false, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2020", true, time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"present", true, monthStart(testNow), true},
		{"Current", true, monthStart(testNow), true},
		{"nonsense", false, time.Time{}, false},
		{"", false, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in+"/"+map[bool]string{true: "end", false: "start"}[tt.isEnd], func(t *testing.T) {
			got, ok := parseMonth(tt.in, testNow, tt.isEnd)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
