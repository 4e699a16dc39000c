package export

import "time"

// Metadata describes a generated export.
type Metadata struct {
	TotalRows      int64             `json:"total_rows"`
	FileSizeBytes  int64             `json:"file_size_bytes"`
	GeneratedAt    time.Time         `json:"generated_at"`
	FiltersApplied map[string]string `json:"filters_applied"`
	SelectedFields []string          `json:"selected_fields"`
}

// Result is a finished export. Content is base64-encoded when marshaled.
type Result struct {
	Content     []byte   `json:"content"`
	Filename    string   `json:"filename"`
	MimeType    string   `json:"mimeType"`
	Format      Format   `json:"format"`
	Metadata    Metadata `json:"metadata"`
	DownloadURL string   `json:"download_url,omitempty"`
}
