package extraction

import "fmt"

// profileSchema is the JSON contract every generative adapter is held to.
// The instructions around null evidence are what keep the confidence
// calibration honest: the model must leave fields empty instead of guessing.
const profileSchema = `{
  "name": "<full name or empty string>",
  "email": "<email or empty string>",
  "phone": "<phone or empty string>",
  "location": "<city/country or empty string>",
  "links": ["<online presence URLs>"],
  "education": [{"institution": "", "degree": "", "field_of_study": "", "start_year": "", "end_year": ""}],
  "experience": [{"title": "", "organization": "", "start_date": "<e.g. Jan 2020>", "end_date": "<e.g. Mar 2023 or Present>", "description": "", "technologies": [""]}],
  "projects": [{"name": "", "description": "", "technologies": [""], "personal": <true if side/personal project>, "ownership_signals": ["<phrases showing ownership, e.g. 'built from scratch'>"]}],
  "skills": {"<category, e.g. languages/frameworks/databases/cloud>": ["<skill>"]},
  "certifications": [""],
  "languages": ["<spoken languages>"],
  "seniority": {"label": "<junior|mid|senior|staff|principal or empty>", "evidence": ["<supporting phrases>"], "confidence": <0-1>},
  "personality": {
    "work_style": {"value": "<e.g. independent, collaborative>", "confidence": <0-1>},
    "ownership_level": {"value": "", "confidence": <0-1>},
    "learning_orientation": {"value": "", "confidence": <0-1>},
    "communication_strength": {"value": "", "confidence": <0-1>},
    "risk_profile": {"value": "", "confidence": <0-1>}
  },
  "leadership_signals": ["<phrases showing leadership>"],
  "red_flags": ["<gaps, very short stints, inconsistencies>"]
}`

const calibrationRules = `Rules:
- Use ONLY evidence present in the document. Never invent names, dates, employers or skills.
- Leave a field as an empty string/array when the document gives no evidence for it.
- Behavioral inferences (seniority, personality) must carry a confidence between 0 and 1 reflecting the strength of the evidence.
- Return ONLY the JSON object, no commentary.`

func buildVisionPrompt() string {
	return fmt.Sprintf(`You are an expert technical recruiter. Read the attached résumé document, including any tables, columns and visual layout, and extract a structured candidate profile.

Return JSON exactly in this shape:
%s

%s`, profileSchema, calibrationRules)
}

func buildLayoutPrompt(pages []string) string {
	var doc string
	for i, page := range pages {
		doc += fmt.Sprintf("--- Page %d ---\n%s\n\n", i+1, page)
	}
	return fmt.Sprintf(`You are an expert technical recruiter. Below is the page-by-page text of a résumé with its reading order preserved. Reconstruct the candidate profile from it.

RESUME TEXT:
%s

Return JSON exactly in this shape:
%s

%s`, doc, profileSchema, calibrationRules)
}

// OCRPrompt is the transcription instruction for scanned documents. Exported
// for the model client that implements TextRecognizer.
func OCRPrompt() string {
	return `Transcribe every piece of text visible in the attached document, top to bottom, left to right. Preserve line breaks. Return only the transcribed text with no commentary.`
}
