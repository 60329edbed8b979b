package handlers

import "context"

type InfoHandler struct{}

func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

type InfoInput struct{}

type InfoBody struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Features  []string `json:"features"`
	Endpoints []string `json:"endpoints"`
}

type InfoOutput struct {
	Body InfoBody
}

// Get describes the API surface for callers hitting the banner endpoint.
func (h *InfoHandler) Get(_ context.Context, _ *InfoInput) (*InfoOutput, error) {
	return &InfoOutput{Body: InfoBody{
		Message: "Session Download System - Video Downloader",
		Version: "3.0",
		Features: []string{
			"Per-session downloads",
			"Direct download to your device",
			"No server-side storage",
			"Multi-platform support",
			"Full per-session privacy",
		},
		Endpoints: []string{
			"POST /formats - List available formats",
			"POST /start - Start resolving a download link",
			"GET /status/{job_id} - Check job status",
			"GET /download/{job_id} - Fetch the direct link",
			"DELETE /cancel/{job_id} - Cancel a job",
			"GET /jobs - List this session's jobs",
		},
	}}, nil
}
