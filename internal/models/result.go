package models

import "github.com/google/uuid"

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
	ContentHash  string `json:"content_hash"`
}

type SubmitExtractionRequest struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
}

type TaskResponse struct {
	ID               string  `json:"id"`
	DocumentID       string  `json:"document_id"`
	Status           string  `json:"status"`
	ProfileVersionID *string `json:"profile_version_id,omitempty"`
	QualityScore     *int    `json:"quality_score,omitempty"`
	ErrorMessage     *string `json:"error_message,omitempty"`
}

type ComputeMatchRequest struct {
	ProfileVersionID string `json:"profile_version_id" validate:"required,uuid"`
	JobID            string `json:"job_id" validate:"required,uuid"`
	Override         bool   `json:"override"`
}

type BulkMatchRequest struct {
	ProfileVersionIDs []string `json:"profile_version_ids"`
	Override          bool     `json:"override"`
	Limit             int      `json:"limit"`
}

type MatchResponse struct {
	ID               string          `json:"id"`
	ProfileVersionID string          `json:"profile_version_id"`
	JobID            string          `json:"job_id"`
	JobVersion       int             `json:"job_version"`
	SkillScore       float64         `json:"skill_score"`
	ExperienceScore  float64         `json:"experience_score"`
	ProjectScore     float64         `json:"project_score"`
	DomainScore      float64         `json:"domain_score"`
	OverallScore     float64         `json:"overall_score"`
	ConfidenceLevel  string          `json:"confidence_level"`
	Explanation      *AiExplanation  `json:"explanation,omitempty"`
}

type RankingEntry struct {
	Rank             int             `json:"rank"`
	ProfileVersionID uuid.UUID       `json:"profile_version_id"`
	MatchID          uuid.UUID       `json:"match_id"`
	OverallScore     float64         `json:"overall_score"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	Percentile       float64         `json:"percentile"`
}
