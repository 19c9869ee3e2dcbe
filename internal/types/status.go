package types

// Report is the outcome of a resize run
type Report struct {
	Status    string   `json:"status"`
	OutputDir string   `json:"outputDir"`
	Files     []string `json:"files"`
	Skipped   []int    `json:"skipped,omitempty"`
	ErrorMsg  string   `json:"errorMsg,omitempty"`
}

const PROCESSED = "PROCESSED"
const FAILED = "FAILED"
