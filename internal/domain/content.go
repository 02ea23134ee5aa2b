package domain

import "fmt"

// Platform identifies where a piece of content will be published.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformBlog      Platform = "blog"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformBlog:
		return true
	}
	return false
}

// ParsePlatform converts a string to a Platform, rejecting unknown values.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", NewDomainError("ParsePlatform", ErrInvalidInput, fmt.Sprintf("unknown platform %q", s))
	}
	return p, nil
}

// ContentType identifies the genre of generated content.
type ContentType string

const (
	ContentBlog   ContentType = "blog"
	ContentVideo  ContentType = "video"
	ContentSocial ContentType = "social"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentBlog, ContentVideo, ContentSocial:
		return true
	}
	return false
}

// ParseContentType converts a string to a ContentType, rejecting unknown values.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if !t.Valid() {
		return "", NewDomainError("ParseContentType", ErrInvalidInput, fmt.Sprintf("unknown content type %q", s))
	}
	return t, nil
}
