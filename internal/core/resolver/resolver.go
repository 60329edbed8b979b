// Package resolver defines the boundary to the external link-resolution
// capability and the media metadata it returns.
package resolver

import "context"

// Resolver turns a public media page URL into direct download metadata.
// Implementations must be safe for concurrent use.
type Resolver interface {
	// Resolve extracts metadata for url honoring the format selector. The
	// returned info carries a top-level direct URL for single-format
	// selections, or candidate formats otherwise.
	Resolve(ctx context.Context, url, selector string) (*MediaInfo, error)

	// Probe extracts metadata without format selection, used to list the
	// available renditions of a page.
	Probe(ctx context.Context, url string) (*MediaInfo, error)
}

// MediaInfo is the parsed metadata for a single media page, shaped after
// yt-dlp --dump-json output.
type MediaInfo struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Ext            string   `json:"ext"`
	URL            string   `json:"url"`
	WebpageURL     string   `json:"webpage_url"`
	Duration       float64  `json:"duration"`
	Filesize       int64    `json:"filesize"`
	FilesizeApprox int64    `json:"filesize_approx"`
	Thumbnail      string   `json:"thumbnail"`
	Uploader       string   `json:"uploader"`
	ViewCount      int64    `json:"view_count"`
	UploadDate     string   `json:"upload_date"`
	Description    string   `json:"description"`
	LiveStatus     string   `json:"live_status"`
	Formats        []Format `json:"formats"`
}

// Format is one downloadable rendition of a media page.
type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	URL            string  `json:"url"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
	TBR            float64 `json:"tbr"`
	ABR            float64 `json:"abr"`
	VBR            float64 `json:"vbr"`
	FPS            float64 `json:"fps"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	Resolution     string  `json:"resolution"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	ASR            int     `json:"asr"`
}

// SizeBytes returns the exact file size when the resolver knows it, falling
// back to its estimate.
func (m *MediaInfo) SizeBytes() int64 {
	if m.Filesize > 0 {
		return m.Filesize
	}
	return m.FilesizeApprox
}

func (f *Format) sizeBytes() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}
