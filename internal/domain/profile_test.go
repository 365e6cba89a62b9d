package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveProfile_RecognizedHosts(t *testing.T) {
	tests := []struct {
		url  string
		host string
	}{
		{"https://www.youtube.com/watch?v=abc123", "youtube.com"},
		{"https://youtu.be/abc123", "youtu.be"},
		{"https://x.com/user/status/1", "x.com"},
		{"https://twitter.com/user/status/1", "twitter.com"},
		{"https://www.tiktok.com/@user/video/1", "tiktok.com"},
		{"https://www.facebook.com/watch?v=1", "facebook.com"},
		{"https://fb.watch/abc/", "fb.watch"},
		{"https://www.instagram.com/reel/abc/", "instagram.com"},
	}

	for _, tt := range tests {
		p := ResolveProfile(tt.url)
		assert.Equal(t, tt.host, p.Host, "url %s", tt.url)
		assert.NotEmpty(t, p.Format)
	}
}

func TestResolveProfile_YouTubeCapsResolution(t *testing.T) {
	p := ResolveProfile("https://youtu.be/abc123")
	assert.Equal(t, "bestvideo[height<=720]+bestaudio/best[height<=720]", p.Format)
	assert.Empty(t, p.ExtractorArgs)
}

func TestResolveProfile_FacebookCarriesExtractorArgs(t *testing.T) {
	p := ResolveProfile("https://www.facebook.com/watch?v=1")
	assert.Equal(t, "best[ext=mp4]", p.Format)
	assert.Equal(t, []string{"facebook:format=sd"}, p.ExtractorArgs)
}

func TestResolveProfile_UnknownHostGetsDefault(t *testing.T) {
	p := ResolveProfile("https://example.org/media/42")
	assert.Empty(t, p.Host)
	assert.Equal(t, defaultProfile.Format, p.Format)
}

func TestFetchFormat_AudioOverridesSelector(t *testing.T) {
	p := ResolveProfile("https://youtu.be/abc123")
	assert.Equal(t, "bestaudio/best", p.FetchFormat(ModalityAudio))
	assert.Equal(t, p.Format, p.FetchFormat(ModalityVideo))
}

func TestPostprocessFor(t *testing.T) {
	assert.Equal(t, PostprocessConvertVideo, PostprocessFor(ModalityVideo))
	assert.Equal(t, PostprocessExtractAudio, PostprocessFor(ModalityAudio))
}
