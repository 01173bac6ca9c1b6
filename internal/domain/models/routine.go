package models

// Routine is a workout routine for one muscle group with a hosted video.
type Routine struct {
	ID          int64  `json:"id"`
	Muscle      string `json:"muscle"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
}
