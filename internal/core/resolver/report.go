package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rendition types used in the quality ladder and the detailed listing.
const (
	TypeAuto       = "auto"
	TypeVideoAudio = "video+audio"
	TypeVideoOnly  = "video"
	TypeAudioOnly  = "audio"
)

// Live content has no stable direct download link.
var (
	ErrLiveEnded  = errors.New("this live event has ended and is not available for download")
	ErrLiveActive = errors.New("active live streams cannot be downloaded")
)

const maxDescriptionRunes = 500

// VideoInfo is the header block of a format report.
type VideoInfo struct {
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail"`
	Uploader    string  `json:"uploader"`
	ViewCount   int64   `json:"view_count"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
}

// QualityOption is one selectable entry of the quality ladder. Value is
// either the literal "best" or a resolver format id usable as a job request.
type QualityOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// FormatDetail describes a single rendition in the detailed listing.
type FormatDetail struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Filesize   int64   `json:"filesize"`
	TBR        float64 `json:"tbr"`
	ABR        float64 `json:"abr"`
	VBR        float64 `json:"vbr"`
	FPS        float64 `json:"fps"`
	Height     int     `json:"height"`
	Width      int     `json:"width"`
	Resolution string  `json:"resolution"`
	Type       string  `json:"type"`
	VCodec     string  `json:"vcodec,omitempty"`
	ACodec     string  `json:"acodec,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
}

// DetailedFormats groups renditions by stream composition.
type DetailedFormats struct {
	VideoAudio []FormatDetail `json:"video_audio"`
	VideoOnly  []FormatDetail `json:"video_only"`
	AudioOnly  []FormatDetail `json:"audio_only"`
}

// FormatReport is everything a caller needs to pick a quality before
// starting a job.
type FormatReport struct {
	VideoInfo       VideoInfo       `json:"video_info"`
	CommonQualities []QualityOption `json:"common_qualities"`
	Detailed        DetailedFormats `json:"detailed_formats"`
	TotalFormats    int             `json:"total_formats"`
}

// BuildFormatReport classifies probed renditions and assembles the quality
// ladder: an automatic best entry, then the best rendition per resolution
// with combined streams preferred over video-only ones, then the audio
// options. Renditions without a direct URL are skipped; entries with neither
// stream (storyboards) are dropped.
func BuildFormatReport(info *MediaInfo) (*FormatReport, error) {
	switch info.LiveStatus {
	case "was_live":
		return nil, ErrLiveEnded
	case "is_live":
		return nil, ErrLiveActive
	}

	report := &FormatReport{
		VideoInfo: buildVideoInfo(info),
		CommonQualities: []QualityOption{
			{Value: "best", Label: "Best quality (auto)", Type: TypeAuto},
		},
		Detailed: DetailedFormats{
			VideoAudio: []FormatDetail{},
			VideoOnly:  []FormatDetail{},
			AudioOnly:  []FormatDetail{},
		},
		TotalFormats: len(info.Formats),
	}

	// Combined and video-only renditions share one list so the per-height
	// pick below can prefer combined streams in resolver order.
	var video, audio []FormatDetail
	for i := range info.Formats {
		f := &info.Formats[i]
		if f.URL == "" {
			continue
		}
		d := FormatDetail{
			FormatID:   f.FormatID,
			Ext:        orDefault(f.Ext, "unknown"),
			Filesize:   f.sizeBytes(),
			TBR:        f.TBR,
			ABR:        f.ABR,
			VBR:        f.VBR,
			FPS:        f.FPS,
			Height:     f.Height,
			Width:      f.Width,
			Resolution: resolutionLabel(f),
		}
		switch {
		case f.VCodec != "none" && f.ACodec != "none":
			d.Type = TypeVideoAudio
			d.VCodec = orDefault(f.VCodec, "unknown")
			d.ACodec = orDefault(f.ACodec, "unknown")
			video = append(video, d)
		case f.VCodec != "none":
			d.Type = TypeVideoOnly
			d.VCodec = orDefault(f.VCodec, "unknown")
			video = append(video, d)
		case f.ACodec != "none":
			d.Type = TypeAudioOnly
			d.ACodec = orDefault(f.ACodec, "unknown")
			d.SampleRate = f.ASR
			audio = append(audio, d)
		}
	}

	for _, h := range uniqueHeights(video) {
		pick := pickForHeight(video, h)
		if pick == nil {
			continue
		}
		label := fmt.Sprintf("%dp", h)
		if pick.FPS > 25 {
			label += fmt.Sprintf(" %gfps", pick.FPS)
		}
		if pick.Type == TypeVideoAudio {
			label += " Video+Audio"
		} else {
			label += " Video only"
		}
		report.CommonQualities = append(report.CommonQualities, QualityOption{
			Value: pick.FormatID,
			Label: label,
			Type:  pick.Type,
		})
	}

	for _, d := range audio {
		label := "Audio " + strings.ToUpper(d.Ext)
		if d.ABR > 0 {
			label += " (" + strconv.FormatFloat(d.ABR, 'f', -1, 64) + "k)"
		}
		report.CommonQualities = append(report.CommonQualities, QualityOption{
			Value: d.FormatID,
			Label: label,
			Type:  TypeAudioOnly,
		})
	}

	for _, d := range video {
		if d.Type == TypeVideoAudio {
			report.Detailed.VideoAudio = append(report.Detailed.VideoAudio, d)
		} else {
			report.Detailed.VideoOnly = append(report.Detailed.VideoOnly, d)
		}
	}
	report.Detailed.AudioOnly = append(report.Detailed.AudioOnly, audio...)

	return report, nil
}

func buildVideoInfo(info *MediaInfo) VideoInfo {
	v := VideoInfo{
		Title:      orDefault(info.Title, "Untitled video"),
		Duration:   info.Duration,
		Thumbnail:  info.Thumbnail,
		Uploader:   orDefault(info.Uploader, "Unknown"),
		ViewCount:  info.ViewCount,
		UploadDate: info.UploadDate,
	}
	if info.Description != "" {
		v.Description = cutRunes(info.Description, maxDescriptionRunes) + "..."
	}
	return v
}

// pickForHeight returns the first combined rendition at the given height,
// or the highest-bitrate video-only one when no combined stream exists.
func pickForHeight(video []FormatDetail, height int) *FormatDetail {
	for i := range video {
		if video[i].Height == height && video[i].Type == TypeVideoAudio {
			return &video[i]
		}
	}
	var best *FormatDetail
	bestRate := -1.0
	for i := range video {
		if video[i].Height != height || video[i].Type != TypeVideoOnly {
			continue
		}
		rate := video[i].VBR
		if rate == 0 {
			rate = video[i].TBR
		}
		if rate > bestRate {
			best, bestRate = &video[i], rate
		}
	}
	return best
}

func uniqueHeights(video []FormatDetail) []int {
	seen := make(map[int]bool)
	var heights []int
	for _, d := range video {
		if d.Height > 0 && !seen[d.Height] {
			seen[d.Height] = true
			heights = append(heights, d.Height)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))
	return heights
}

func resolutionLabel(f *Format) string {
	if f.Resolution != "" {
		return f.Resolution
	}
	if f.Width > 0 || f.Height > 0 {
		return fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func cutRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
