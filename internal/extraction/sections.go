package extraction

import (
	"context"
	"regexp"
	"strings"

	"talentmatch/resume-engine/internal/models"
)

type sectionType string

const (
	sectionHeader     sectionType = "header"
	sectionExperience sectionType = "experience"
	sectionEducation  sectionType = "education"
	sectionSkills     sectionType = "skills"
	sectionProjects   sectionType = "projects"
	sectionCerts      sectionType = "certifications"
	sectionLanguages  sectionType = "languages"
	sectionOther      sectionType = "other"
)

var sectionTitles = map[sectionType]*regexp.Regexp{
	sectionExperience: regexp.MustCompile(`(?i)^(work\s+)?(experience|employment( history)?|professional experience|career history)\s*:?$`),
	sectionEducation:  regexp.MustCompile(`(?i)^(education|academic background|qualifications)\s*:?$`),
	sectionSkills:     regexp.MustCompile(`(?i)^(technical\s+)?(skills|technologies|tech stack|competencies)\s*:?$`),
	sectionProjects:   regexp.MustCompile(`(?i)^(personal\s+|side\s+)?projects\s*:?$`),
	sectionCerts:      regexp.MustCompile(`(?i)^(certifications?|licenses?)\s*:?$`),
	sectionLanguages:  regexp.MustCompile(`(?i)^languages\s*:?$`),
}

// SectionsAdapter runs section-boundary detection over recovered text, then
// tags entities inside each section. Fully local; the fallback when every
// generative pass is out.
type SectionsAdapter struct{}

func NewSectionsAdapter() *SectionsAdapter {
	return &SectionsAdapter{}
}

func (a *SectionsAdapter) Kind() AdapterKind {
	return AdapterSections
}

func (a *SectionsAdapter) Extract(ctx context.Context, in Input) (*models.CandidateProfile, error) {
	text := in.Text
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoContent
	}

	sections := splitSections(text)

	var wire extractedProfile
	parseHeaderSection(sections[sectionHeader], &wire)
	wire.Experience = parseExperienceSection(sections[sectionExperience])
	wire.Education = parseEducationSection(sections[sectionEducation])
	wire.Skills = parseSkillsSection(sections[sectionSkills])
	wire.Projects = parseProjectsSection(sections[sectionProjects])
	wire.Certifications = splitListLines(sections[sectionCerts])
	wire.Languages = splitListItems(strings.Join(sections[sectionLanguages], " "))

	return wire.toProfile(AdapterSections), nil
}

// splitSections walks the lines and buckets them by the last seen header.
// Everything before the first header is the identity block.
func splitSections(text string) map[sectionType][]string {
	out := map[sectionType][]string{}
	current := sectionHeader

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if st, ok := matchSectionTitle(line); ok {
			current = st
			continue
		}
		out[current] = append(out[current], line)
	}
	return out
}

func matchSectionTitle(line string) (sectionType, bool) {
	// Headers are short; a paragraph mentioning "experience" is not one.
	if len([]rune(line)) > 40 {
		return sectionOther, false
	}
	for st, re := range sectionTitles {
		if re.MatchString(line) {
			return st, true
		}
	}
	return sectionOther, false
}

func parseHeaderSection(lines []string, wire *extractedProfile) {
	for i, line := range lines {
		if wire.Email == "" {
			if m := emailRe.FindString(line); m != "" {
				wire.Email = m
			}
		}
		if len(urlRe.FindString(line)) > 0 {
			wire.Links = append(wire.Links, urlRe.FindAllString(line, -1)...)
		}
		if wire.Phone == "" && emailRe.FindString(line) == "" && urlRe.FindString(line) == "" {
			if m := phoneRe.FindString(line); len(strings.Map(keepDigits, m)) >= 7 {
				wire.Phone = strings.TrimSpace(m)
			}
		}

		// Name heuristic: first short line near the top with no entities in it.
		if wire.Name == "" && i < 4 {
			words := strings.Fields(line)
			if len(words) >= 2 && len(words) <= 4 &&
				emailRe.FindString(line) == "" && urlRe.FindString(line) == "" &&
				!strings.ContainsAny(line, "0123456789@/") {
				wire.Name = line
			}
		}
	}
}

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

// parseExperienceSection groups lines into entries keyed by date-range lines.
// Entry headers commonly sit on the line above the dates, so a line directly
// preceding a date range starts the next entry.
func parseExperienceSection(lines []string) []models.ExperienceEntry {
	var entries []models.ExperienceEntry
	var current *models.ExperienceEntry

	flush := func() {
		if current != nil {
			entries = append(entries, *current)
			current = nil
		}
	}

	for i, line := range lines {
		if m := dateRangeRe.FindStringSubmatch(line); m != nil {
			rest := strings.TrimSpace(dateRangeRe.ReplaceAllString(line, ""))
			if current == nil || current.StartDate != "" {
				flush()
				current = &models.ExperienceEntry{}
			}
			if current.Title == "" && rest != "" {
				current.Title, current.Organization = splitTitleOrg(rest)
			}
			current.StartDate = strings.TrimSpace(m[1])
			current.EndDate = strings.TrimSpace(m[2])
			continue
		}

		if i+1 < len(lines) && dateRangeRe.MatchString(lines[i+1]) && (current == nil || current.StartDate != "") {
			flush()
			title, org := splitTitleOrg(line)
			current = &models.ExperienceEntry{Title: title, Organization: org}
			continue
		}

		if current == nil {
			title, org := splitTitleOrg(line)
			current = &models.ExperienceEntry{Title: title, Organization: org}
			continue
		}

		if current.Title == "" {
			current.Title, current.Organization = splitTitleOrg(line)
			continue
		}
		if current.Description != "" {
			current.Description += " "
		}
		current.Description += strings.TrimLeft(line, "•-* ")
	}
	flush()

	// Entries with neither a title nor dates are noise.
	var out []models.ExperienceEntry
	for _, e := range entries {
		if e.Title != "" || e.StartDate != "" {
			out = append(out, e)
		}
	}
	return out
}

// splitTitleOrg tears "Senior Engineer at Acme" / "Senior Engineer, Acme" /
// "Senior Engineer | Acme" apart.
func splitTitleOrg(line string) (title, org string) {
	line = strings.Trim(line, "•-* \t")
	for _, sep := range []string{" at ", " @ ", " | ", " — ", " - ", ", "} {
		if idx := strings.Index(line, sep); idx > 0 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(sep):])
		}
	}
	return line, ""
}

var degreeRe = regexp.MustCompile(`(?i)(bachelor|master|ph\.?d|b\.?sc?|m\.?sc?|b\.?e\b|m\.?e\b|b\.?tech|m\.?tech|mba|diploma)`)

func parseEducationSection(lines []string) []models.Education {
	var out []models.Education
	var current *models.Education

	for _, line := range lines {
		years := yearRe.FindAllString(line, -1)
		isDegree := degreeRe.MatchString(line)

		switch {
		case current == nil:
			current = &models.Education{Institution: line}
		case isDegree && current.Degree == "":
			current.Degree = line
		default:
			out = append(out, *current)
			current = &models.Education{Institution: line}
		}

		if len(years) > 0 && current.StartYear == "" {
			current.StartYear = years[0]
			if len(years) > 1 {
				current.EndYear = years[len(years)-1]
			}
		}
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

func parseSkillsSection(lines []string) map[string][]string {
	out := map[string][]string{}
	for _, line := range lines {
		category := "general"
		body := line
		if idx := strings.Index(line, ":"); idx > 0 && idx < 30 {
			category = strings.ToLower(strings.TrimSpace(line[:idx]))
			body = line[idx+1:]
		}
		items := splitListItems(body)
		if len(items) > 0 {
			out[category] = append(out[category], items...)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseProjectsSection(lines []string) []models.Project {
	var out []models.Project
	var current *models.Project

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, "•-* ")
		startsEntry := trimmed != line || current == nil

		if startsEntry {
			if current != nil {
				out = append(out, *current)
			}
			name := trimmed
			desc := ""
			for _, sep := range []string{" — ", " - ", ": "} {
				if idx := strings.Index(trimmed, sep); idx > 0 {
					name = strings.TrimSpace(trimmed[:idx])
					desc = strings.TrimSpace(trimmed[idx+len(sep):])
					break
				}
			}
			current = &models.Project{Name: name, Description: desc}
			continue
		}

		if current.Description != "" {
			current.Description += " "
		}
		current.Description += trimmed
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

func splitListLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		out = append(out, strings.Trim(line, "•-* \t"))
	}
	return out
}

func splitListItems(body string) []string {
	items := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '•' || r == '·'
	})
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && len([]rune(item)) <= 40 {
			out = append(out, item)
		}
	}
	return out
}
