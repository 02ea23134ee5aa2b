package compliance

import "ftcguard/internal/domain"

// platformDisclosures maps each publishing platform to its boilerplate
// disclosure block. Built once; never mutated at runtime.
var platformDisclosures = map[domain.Platform]string{
	domain.PlatformYouTube: "DISCLOSURE: This video contains affiliate links. " +
		"As an Amazon Associate, I earn from qualifying purchases. " +
		"If you buy through these links, I may receive a commission at no additional cost to you.",
	domain.PlatformBlog: "Disclosure: This post contains affiliate links. " +
		"As an Amazon Associate, I earn from qualifying purchases. " +
		"This means I may receive a commission if you click a link and make a purchase, " +
		"at no additional cost to you.",
	domain.PlatformTikTok:    "#ad #affiliate As an Amazon Associate, I earn from qualifying purchases.",
	domain.PlatformInstagram: "#ad #sponsored #affiliate I may earn a commission from links in this post.",
}

// typeDisclosures maps each content genre to the default disclosure used
// at generation time by AddDisclosure.
var typeDisclosures = map[domain.ContentType]string{
	domain.ContentBlog: platformDisclosures[domain.PlatformBlog],
	domain.ContentVideo: "[DISCLOSURE] This video is sponsored and contains affiliate links. " +
		"As an Amazon Associate, I earn from qualifying purchases.",
	domain.ContentSocial: "#ad #affiliate As an Amazon Associate, I earn from qualifying purchases.",
}

// Position controls where AddDisclosure places the disclosure block.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionBoth   Position = "both"
)

// InjectConfig tunes disclosure injection at generation time.
type InjectConfig struct {
	Enabled    bool
	Position   Position
	CustomText string
}

// DefaultInjectConfig returns the injection defaults: enabled, bottom.
func DefaultInjectConfig() InjectConfig {
	return InjectConfig{Enabled: true, Position: PositionBottom}
}

// Injector guarantees content carries a required disclosure.
type Injector struct {
	validator *Validator
}

// NewInjector creates an injector backed by the given validator.
func NewInjector(v *Validator) *Injector {
	return &Injector{validator: v}
}

// EnsureDisclosure returns content unchanged when a disclosure is already
// present (byte-identical, so callers may rely on equality for no-op
// detection), otherwise appends the platform's disclosure block after a
// blank-line separator. Idempotent: a second call is always a no-op.
func (i *Injector) EnsureDisclosure(content string, platform domain.Platform) string {
	if i.validator.Validate(content).HasDisclosure {
		return content
	}

	disclosure, ok := platformDisclosures[platform]
	if !ok {
		disclosure = platformDisclosures[domain.PlatformBlog]
	}
	return content + "\n\n" + disclosure
}

// AddDisclosure is the config-driven injection path used at generation
// time. Unlike EnsureDisclosure it does not check for an existing
// disclosure; it honors the position, enabled, and custom-text settings.
func (i *Injector) AddDisclosure(content string, contentType domain.ContentType, cfg *InjectConfig) string {
	conf := DefaultInjectConfig()
	if cfg != nil {
		conf = *cfg
	}
	if !conf.Enabled {
		return content
	}

	text := conf.CustomText
	if text == "" {
		text = typeDisclosures[contentType]
	}

	switch conf.Position {
	case PositionTop:
		return text + "\n\n" + content
	case PositionBoth:
		return text + "\n\n" + content + "\n\n" + text
	default: // bottom
		return content + "\n\n" + text
	}
}
