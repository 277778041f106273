package model

import "time"

// RunSource records how a batch entered the system.
type RunSource string

const (
	RunSourceUpload   RunSource = "upload"
	RunSourceGenerate RunSource = "generate"
	RunSourceAPI      RunSource = "api"
)

// Run is one processed batch.
type Run struct {
	ID         string     `json:"id"`
	Source     RunSource  `json:"source"`
	Label      string     `json:"label"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Failed     int        `json:"failed"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
