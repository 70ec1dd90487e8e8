package planparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// studyDesignSynonyms maps loose model output to canonical study design
// labels. Keys are pre-normalised: lowercased, with spaces and hyphens
// collapsed to underscores.
var studyDesignSynonyms = map[string]string{
	"meta_analysis":       "meta_analysis",
	"meta_analyse":        "meta_analysis",
	"metaanalysis":        "meta_analysis",
	"systematic_review":   "meta_analysis",
	"rct":                 "rct",
	"randomized_trial":    "rct",
	"randomised_trial":    "rct",
	"cohort":              "cohort",
	"cohort_study":        "cohort",
	"observational_study": "cohort",
	"case_control":        "case_control",
	"case_report":         "case_report",
	"case_series":         "case_report",
	"guideline":           "guideline",
	"richtlijn":           "guideline",
	"expert_opinion":      "expert_opinion",
	"consensus":           "expert_opinion",
	"narrative_review":    "other",
	"cross_sectional":     "other",
	"dierstudie":          "other",
	"animal_study":        "other",
}

// evidenceLevels is the closed set of canonical evidence grades.
var evidenceLevels = map[string]bool{
	"a1": true, "a2": true, "b": true, "c": true, "d": true,
}

// Validate checks a recovered JSON object against the versioned plan
// schema, normalising enumerated values, coercing lists and clamping
// numeric bounds. It returns the normalised payload on success, or a
// list of field-level issues ("path: message") on failure.
func Validate(obj map[string]any, schemaVersion string) (*domain.ParsedPlan, []string) {
	var issues []string

	plan := &domain.ParsedPlan{SchemaVersion: schemaVersion}
	plan.DocumentSummary = stringField(obj, "document_summary")
	plan.Language = strings.ToLower(stringField(obj, "language"))

	rawNotions, ok := obj["proposed_notions"]
	if !ok {
		issues = append(issues, "proposed_notions: required field missing")
		return nil, issues
	}

	list, ok := rawNotions.([]any)
	if !ok && rawNotions != nil {
		issues = append(issues, "proposed_notions: expected a list")
		return nil, issues
	}

	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			issues = append(issues, fmt.Sprintf("proposed_notions[%d]: expected an object", i))
			continue
		}

		notion, entryIssues := validateNotion(entry, fmt.Sprintf("proposed_notions[%d]", i))
		issues = append(issues, entryIssues...)
		if len(entryIssues) == 0 {
			plan.ProposedNotions = append(plan.ProposedNotions, notion)
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return plan, nil
}

// validateNotion checks one proposed notion entry.
func validateNotion(entry map[string]any, path string) (domain.ProposedNotion, []string) {
	var issues []string
	var notion domain.ProposedNotion

	notion.CandidateNotionID = stringField(entry, "candidate_notion_id")
	if notion.CandidateNotionID == "" {
		issues = append(issues, path+".candidate_notion_id: required field missing")
	}

	notion.Title = stringField(entry, "title")
	if notion.Title == "" {
		issues = append(issues, path+".title: required field missing")
	}

	notion.Summary = stringField(entry, "summary")
	notion.StudyDesign = normaliseStudyDesign(stringField(entry, "study_design"))

	level := strings.ToLower(strings.TrimSpace(stringField(entry, "evidence_level")))
	if level != "" && !evidenceLevels[level] {
		issues = append(issues, fmt.Sprintf("%s.evidence_level: unknown grade %q", path, level))
	} else {
		notion.EvidenceLevel = level
	}

	notion.Tags = coerceList(entry["tags"])
	notion.Priority = clamp01(numericField(entry, "priority", 0.5))

	return notion, issues
}

// normaliseStudyDesign maps a loose study design label to its canonical
// form. Unknown labels become "other" rather than failing validation.
func normaliseStudyDesign(raw string) string {
	if raw == "" {
		return ""
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if canonical, ok := studyDesignSynonyms[key]; ok {
		return canonical
	}
	return "other"
}

// coerceList turns model output into a string list: lists pass through,
// a comma-separated string is split, null becomes empty.
func coerceList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}

// stringField reads a string value, tolerating absent or null fields.
func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// numericField reads a numeric value, tolerating numbers encoded as
// strings. Absent or unparseable values fall back to def.
func numericField(obj map[string]any, key string, def float64) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

// clamp01 bounds a score to [0,1].
func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
