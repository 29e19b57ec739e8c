package domain

import "time"

// DiagnosisReport is the full report returned for a submitted crop image.
type DiagnosisReport struct {
	Title                string  `json:"title"`
	DiagnosisSummary     string  `json:"diagnosis_summary"`
	EnvironmentalContext string  `json:"environmental_context"`
	ManagementSuggestion string  `json:"management_suggestion"`
	DiseaseName          string  `json:"disease_name"`
	Confidence           float64 `json:"confidence"`
	XAIImageURL          string  `json:"xai_image_url,omitempty"`
}

// DiagnosisHistoryItem is one past diagnosis in the user's history.
type DiagnosisHistoryItem struct {
	ID          int64     `json:"id"`
	ReportTitle string    `json:"report_title"`
	DiseaseName string    `json:"disease_name"`
	Confidence  float64   `json:"confidence"`
	ImageURL    string    `json:"image_url"`
	Timestamp   time.Time `json:"timestamp"`
}

// DiagnosisRequest carries the multipart fields for a diagnosis submission.
type DiagnosisRequest struct {
	ImagePath string
	Latitude  float64
	Longitude float64
	Language  string
}
