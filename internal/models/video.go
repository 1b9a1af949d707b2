package models

// Video is a read-only view of the media catalog. Upload, transcoding and
// asset lifecycle are owned by the catalog service; playback authorization
// only needs the required plan and the playback reference.
type Video struct {
	BaseModel

	Title       string `json:"title" gorm:"not null;size:255"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category" gorm:"size:100;index"`

	// Playback reference at the media delivery provider
	PlaybackID string `json:"playback_id" gorm:"size:100"`

	// Minimum plan required to play; empty means free content
	RequiredPlanID string `json:"required_plan_id" gorm:"size:50"`

	DurationSeconds int `json:"duration_seconds"`
}
