package models

import "time"

type Exercise struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsCustom    bool      `json:"is_custom"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	Synonyms    []string  `json:"synonyms,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOrphan reports whether the exercise is a sparsely described user-created
// entry: custom, with neither an image nor a description.
func (e *Exercise) IsOrphan() bool {
	return e.IsCustom && e.ImageURL == nil && e.Description == nil
}

// IsRichLibrary reports whether the exercise is a curated entry with an
// image, which makes it eligible as a merge target.
func (e *Exercise) IsRichLibrary() bool {
	return !e.IsCustom && e.ImageURL != nil
}
