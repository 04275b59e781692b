package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Project represents a portfolio project with metadata
type Project struct {
	ID          uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title       string         `json:"title" db:"title" gorm:"type:text;not null"`
	Description *string        `json:"description,omitempty" db:"description" gorm:"type:text"`
	GithubURL   *string        `json:"github_url,omitempty" db:"github_url" gorm:"type:text"`
	CoverURL    *string        `json:"cover_url,omitempty" db:"cover_url" gorm:"type:text"`
	Tools       pq.StringArray `json:"tools" db:"tools" gorm:"type:text[]"`
	Published   bool           `json:"published" db:"published" gorm:"not null;default:true"`
	Featured    bool           `json:"featured" db:"featured" gorm:"not null;default:false"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

// SplitTools normalizes a comma-separated tools string into an ordered
// sequence of tags. Segments are trimmed, empty segments dropped, duplicates
// and order preserved.
func SplitTools(csv string) []string {
	var tools []string
	for _, t := range strings.Split(csv, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tools = append(tools, t)
		}
	}
	return tools
}
