package allowlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	l := New([]string{"youtube.com", "youtu.be", "tiktok.com", "Vimeo.com "})

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"exact domain", "https://youtube.com/watch?v=abc", true},
		{"subdomain", "https://www.youtube.com/watch?v=abc", true},
		{"deep subdomain", "https://m.vm.tiktok.com/xyz", true},
		{"short link", "https://youtu.be/abc", true},
		{"port ignored", "https://youtube.com:8443/watch", true},
		{"case and whitespace normalized in config", "https://player.vimeo.com/1234", true},
		{"host case insensitive", "https://WWW.YOUTUBE.COM/watch", true},
		{"unlisted domain", "https://evil.example.com/watch", false},
		{"suffix trick rejected", "https://notyoutube.com/watch", false},
		{"embedded domain rejected", "https://youtube.com.evil.net/watch", false},
		{"no scheme means no host", "youtube.com/watch", false},
		{"empty url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Allowed(tt.url))
		})
	}
}
