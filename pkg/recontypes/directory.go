package recontypes

// DirectoryInfo is one meaningful response returned by DirectoryProber
// against a single confirmed HTTPInfo endpoint.
type DirectoryInfo struct {
	Path                string  `json:"path"`
	StatusCode          int     `json:"status_code"`
	ContentLength       *int64  `json:"content_length,omitempty"`
	ContentType         string  `json:"content_type,omitempty"`
	Title               string  `json:"title,omitempty"`
	IsAdmin             bool    `json:"is_admin"`
	ResponseTimeSeconds float64 `json:"response_time"`
}
