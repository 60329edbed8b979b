package util

import (
	"strings"
	"unicode/utf8"
)

// Characters that are not safe in file names on common filesystems.
const filenameIllegal = `<>:"/\|?*`

const (
	maxFilenameRunes = 100
	baseKeepRunes    = 90
)

// SanitizeFilename strips illegal characters from a resolved media file name
// and truncates over-long names, keeping the extension intact. Length is
// measured in runes so multi-byte titles are not cut mid-character.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if !strings.ContainsRune(filenameIllegal, r) {
			b.WriteRune(r)
		}
	}
	name = b.String()

	if utf8.RuneCountInString(name) <= maxFilenameRunes {
		return name
	}
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], name[i+1:]
	}
	base = cutRunes(base, baseKeepRunes)
	if ext != "" {
		return base + "." + ext
	}
	return base
}

func cutRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
