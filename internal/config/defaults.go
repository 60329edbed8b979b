package config

import (
	"github.com/knadh/koanf/v2"
)

// defaultUserAgent is sent to extractors so probes look like a regular
// desktop browser visit.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// defaultDomains lists the hosts accepted for resolution out of the box.
var defaultDomains = []string{
	"youtube.com", "www.youtube.com", "youtu.be", "m.youtube.com",
	"instagram.com", "www.instagram.com",
	"tiktok.com", "www.tiktok.com", "vm.tiktok.com",
	"facebook.com", "www.facebook.com", "fb.watch",
	"twitter.com", "x.com", "vimeo.com",
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"server.host":         "0.0.0.0",
		"server.port":         1005,
		"server.cors_origins": []string{"*"},

		"session.max_sessions":   1000,
		"session.ttl":            "24h",
		"session.sweep_interval": "1h",

		"resolver.binary":         "yt-dlp",
		"resolver.max_concurrent": 3,
		"resolver.cookies_file":   "",
		"resolver.user_agent":     defaultUserAgent,
		"resolver.extra_args":     []string{},

		"allowlist.domains": defaultDomains,

		"logging.level":  "info",
		"logging.format": "pretty",
	}

	for key, val := range defaults {
		k.Set(key, val)
	}
	return nil
}
