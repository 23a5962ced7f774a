package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"Mansoor88-6/project-timer/internal/models"
)

type Row struct {
	Date        string  `json:"date"`
	ProjectID   int64   `json:"projectId"`
	Project     string  `json:"project"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
}

type Group struct {
	Key   string  `json:"key"`
	Title string  `json:"title"`
	Rows  []Row   `json:"rows"`
	Hours float64 `json:"hours"`
}

type ProjectTotal struct {
	ProjectID int64   `json:"projectId"`
	Name      string  `json:"name"`
	Hours     float64 `json:"hours"`
}

// Summary is a grouped view over a set of time entries.
type Summary struct {
	GroupBy    string         `json:"groupBy"`
	Groups     []Group        `json:"groups"`
	Projects   []ProjectTotal `json:"projects"`
	TotalHours float64        `json:"totalHours"`
}

// Summarize groups entries by date bucket, newest bucket first. Entries keep
// their input order inside a bucket. With GroupByNone everything lands in a
// single untitled group.
func Summarize(entries []*models.TimeEntry, projects []models.Project, groupBy string) (*Summary, error) {
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	projectName := func(id int64) string {
		if name, ok := names[id]; ok {
			return name
		}
		return fmt.Sprintf("project #%d", id)
	}

	groups := make(map[string]*Group)
	var keys []string
	perProject := make(map[int64]float64)
	var total float64

	for _, e := range entries {
		day, err := time.Parse(models.DateLayout, e.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d has invalid date %q: %w", e.ID, e.Date, err)
		}

		key := GetGroupKey(day, groupBy)
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, Title: GetGroupTitle(day, groupBy)}
			groups[key] = g
			keys = append(keys, key)
		}

		g.Rows = append(g.Rows, Row{
			Date:        e.Date,
			ProjectID:   e.ProjectID,
			Project:     projectName(e.ProjectID),
			Description: e.Description,
			Hours:       e.Duration,
		})
		g.Hours += e.Duration
		perProject[e.ProjectID] += e.Duration
		total += e.Duration
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	s := &Summary{
		GroupBy:    groupBy,
		Groups:     make([]Group, 0, len(keys)),
		Projects:   make([]ProjectTotal, 0, len(perProject)),
		TotalHours: round2(total),
	}
	for _, key := range keys {
		g := groups[key]
		g.Hours = round2(g.Hours)
		s.Groups = append(s.Groups, *g)
	}
	for id, hours := range perProject {
		s.Projects = append(s.Projects, ProjectTotal{ProjectID: id, Name: projectName(id), Hours: round2(hours)})
	}
	sort.Slice(s.Projects, func(i, j int) bool {
		if s.Projects[i].Hours != s.Projects[j].Hours {
			return s.Projects[i].Hours > s.Projects[j].Hours
		}
		return s.Projects[i].Name < s.Projects[j].Name
	})

	return s, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
