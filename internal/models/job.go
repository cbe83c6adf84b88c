package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobRequirement describes one job opening. Skill lists are stored as JSON
// arrays; the free-text description is the source for embeddings.
type JobRequirement struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title              string      `gorm:"type:text;not null" json:"title"`
	RequiredSkills     StringList  `gorm:"type:jsonb" json:"required_skills"`
	NiceToHaveSkills   StringList  `gorm:"type:jsonb" json:"nice_to_have_skills"`
	MinExperienceYears float64     `gorm:"not null;default:0" json:"min_experience_years"`
	SeniorityLevel     string      `gorm:"type:text" json:"seniority_level"`
	EducationRequired  string      `gorm:"type:text" json:"education_required"`
	Description        string      `gorm:"type:text" json:"description"`
	Version            int         `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (JobRequirement) TableName() string {
	return "job_requirements"
}

// BeforeUpdate bumps the version so derived match results can be invalidated.
func (j *JobRequirement) BeforeUpdate(tx *gorm.DB) error {
	j.Version++
	return nil
}
