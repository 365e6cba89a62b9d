package domain

import "strings"

// PostprocessKind selects the post-processing the fetch engine applies
// after download.
type PostprocessKind string

const (
	// PostprocessConvertVideo normalizes the output to the standard
	// video container.
	PostprocessConvertVideo PostprocessKind = "convert-video"
	// PostprocessExtractAudio extracts and re-encodes the audio track.
	PostprocessExtractAudio PostprocessKind = "extract-audio"
)

// Targets for post-processing.
const (
	TargetVideoContainer = "mp4"
	TargetAudioCodec     = "mp3"
	TargetAudioQuality   = "192"
)

// formatCapped720 selects combined video+audio capped at 720p. It is the
// selector for most recognized hosts and the default for unknown ones.
const formatCapped720 = "bestvideo[height<=720]+bestaudio/best[height<=720]"

// formatBestAudio overrides the profile selector for audio requests.
const formatBestAudio = "bestaudio/best"

// SiteProfile bundles the format selector and extractor arguments for one
// recognized source host.
type SiteProfile struct {
	Host          string   // substring matched against the URL
	Format        string   // format selector expression
	ExtractorArgs []string // opaque engine extractor arguments
}

// siteProfiles is the ordered host table. First match wins.
var siteProfiles = []SiteProfile{
	{
		Host:          "facebook.com",
		Format:        "best[ext=mp4]",
		ExtractorArgs: []string{"facebook:format=sd"},
	},
	{
		Host:          "fb.watch",
		Format:        "best[ext=mp4]",
		ExtractorArgs: []string{"facebook:format=sd"},
	},
	{Host: "tiktok.com", Format: formatCapped720},
	{Host: "twitter.com", Format: formatCapped720},
	{Host: "x.com", Format: formatCapped720},
	{
		Host:          "instagram.com",
		Format:        "bestvideo+bestaudio/best",
		ExtractorArgs: []string{"instagram:format=download"},
	},
	{Host: "youtube.com", Format: formatCapped720},
	{Host: "youtu.be", Format: formatCapped720},
}

// defaultProfile is used for hosts not present in the table.
var defaultProfile = SiteProfile{Format: formatCapped720}

// ResolveProfile maps a URL to the profile of the first matching host
// entry, or the default profile when no entry matches. It is pure and is
// called both at preview time and at download time.
func ResolveProfile(url string) SiteProfile {
	for _, p := range siteProfiles {
		if containsHost(url, p.Host) {
			return p
		}
	}
	return defaultProfile
}

// FetchFormat returns the format selector for the requested modality.
// Audio requests always fetch the best audio stream regardless of the
// site's video selector.
func (p SiteProfile) FetchFormat(m Modality) string {
	if m == ModalityAudio {
		return formatBestAudio
	}
	return p.Format
}

// PostprocessFor maps a modality to its post-processing directive.
func PostprocessFor(m Modality) PostprocessKind {
	if m == ModalityAudio {
		return PostprocessExtractAudio
	}
	return PostprocessConvertVideo
}

func containsHost(url, host string) bool {
	return host != "" && strings.Contains(url, host)
}
