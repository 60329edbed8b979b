package resolver

import "strings"

const genericProbeError = "Could not process the video. Check that the URL is valid and the content is available."

// ClassifyProbeError rewrites a raw resolver failure into a message that is
// safe to show the caller. Known platform failure modes get specific hints;
// anything overly long collapses to a generic message so resolver internals
// do not leak.
func ClassifyProbeError(url string, err error) string {
	msg := err.Error()
	lowURL := strings.ToLower(url)
	lowMsg := strings.ToLower(msg)

	switch {
	case strings.Contains(lowURL, "instagram.com"):
		switch {
		case strings.Contains(lowMsg, "login"), strings.Contains(lowMsg, "private"):
			return "This Instagram content is private or requires login"
		case strings.Contains(lowMsg, "not found"):
			return "The Instagram content was not found or has been removed"
		case strings.Contains(lowMsg, "age"):
			return "This Instagram content is age restricted"
		}
	case strings.Contains(lowURL, "tiktok.com"):
		switch {
		case strings.Contains(lowMsg, "private"):
			return "This TikTok video is private"
		case strings.Contains(lowMsg, "region"):
			return "This TikTok content is not available in your region"
		}
	}

	if len(msg) > 200 {
		return genericProbeError
	}
	return msg
}

// DetectPlatform names the platform a URL belongs to, for error responses.
func DetectPlatform(url string) string {
	low := strings.ToLower(url)
	switch {
	case strings.Contains(low, "instagram.com"):
		return "instagram"
	case strings.Contains(low, "tiktok.com"):
		return "tiktok"
	case strings.Contains(low, "youtube.com"), strings.Contains(low, "youtu.be"):
		return "youtube"
	default:
		return "unknown"
	}
}
