package server

import (
	"github.com/mantonx/boomerang/internal/pipeline"
)

// Message contract pushed to the browser. The client sends nothing; this is
// pure server-push.

type progressPayload struct {
	pipeline.ProcessingProgress
	FileName string `json:"fileName"`
}

type progressMessage struct {
	Type     string          `json:"type"`
	JobID    string          `json:"jobId"`
	Progress progressPayload `json:"progress"`
}

type completeResult struct {
	*pipeline.Result
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
}

type completeMessage struct {
	Type   string         `json:"type"`
	JobID  string         `json:"jobId"`
	Result completeResult `json:"result"`
}

type errorMessage struct {
	Type     string `json:"type"`
	JobID    string `json:"jobId"`
	Error    string `json:"error"`
	FileName string `json:"fileName"`
}
