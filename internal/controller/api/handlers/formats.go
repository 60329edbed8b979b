package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/allowlist"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver"
)

type FormatsHandler struct {
	res   resolver.Resolver
	allow *allowlist.Allowlist
}

func NewFormatsHandler(res resolver.Resolver, allow *allowlist.Allowlist) *FormatsHandler {
	return &FormatsHandler{res: res, allow: allow}
}

type FormatsInput struct {
	Body struct {
		URL string `json:"url,omitempty" doc:"Media page URL to probe"`
	}
}

// FormatsBody flattens the format report next to the success flag.
type FormatsBody struct {
	Success bool `json:"success"`
	resolver.FormatReport
}

type FormatsOutput struct {
	Body FormatsBody
}

// List probes the available renditions of a media page without creating a
// job. Probe failures come back as 400s with a caller-safe message and the
// platform the URL was recognized as.
func (h *FormatsHandler) List(ctx context.Context, input *FormatsInput) (*FormatsOutput, error) {
	url := input.Body.URL
	if url == "" {
		return nil, huma.Error400BadRequest("URL is required")
	}
	if !h.allow.Allowed(url) {
		return nil, huma.Error400BadRequest(errURLNotAllowed)
	}

	info, err := h.res.Probe(ctx, url)
	if err != nil {
		return nil, probeError(url, err)
	}

	report, err := resolver.BuildFormatReport(info)
	if err != nil {
		return nil, probeError(url, err)
	}

	return &FormatsOutput{Body: FormatsBody{Success: true, FormatReport: *report}}, nil
}

func probeError(url string, err error) error {
	return &APIError{
		status:   http.StatusBadRequest,
		Success:  false,
		Err:      resolver.ClassifyProbeError(url, err),
		Platform: resolver.DetectPlatform(url),
	}
}
