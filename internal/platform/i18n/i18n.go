// Package i18n resolves request locales and looks up display strings
// from the embedded locale catalogs.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/louisbranch/koningsdag/internal/platform/i18n/catalog"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

var supportedTags = []language.Tag{
	language.MustParse("en-US"),
	language.MustParse("nl-NL"),
}

var tagMatcher = language.NewMatcher(supportedTags)
var supportedTagSet = make(map[string]language.Tag, len(supportedTags))

func init() {
	for _, tag := range supportedTags {
		supportedTagSet[tag.String()] = tag
	}
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return supportedTags[0]
}

// ResolveTag determines the best language tag for the request: the lang
// query parameter first, then Accept-Language, then the default.
func ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return Default()
	}
	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := parseTag(langValue); ok {
			return tag
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			// Match through the index: the matched tag itself may carry
			// extensions that no catalog locale key uses.
			_, idx, _ := tagMatcher.Match(tags...)
			return supportedTags[idx]
		}
	}
	return Default()
}

// MatchTag resolves a raw language value to a supported tag, falling
// back to the default when the value is empty or unsupported. Callers
// outside the HTTP driver use it to honor a lang field.
func MatchTag(value string) language.Tag {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		if tag, ok := parseTag(trimmed); ok {
			return tag
		}
	}
	return Default()
}

func parseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	if tag, ok := supportedTagSet[parsed.String()]; ok {
		return tag, true
	}
	_, idx, conf := tagMatcher.Match(parsed)
	if conf >= language.High {
		return supportedTags[idx], true
	}
	return language.Tag{}, false
}

// RoleName returns the localized display name for a role id.
func RoleName(tag language.Tag, roleID, fallback string) string {
	return lookup(tag, "roles."+roleID+".name", fallback)
}

// EventName returns the localized display name for an event id.
func EventName(tag language.Tag, eventID, fallback string) string {
	return lookup(tag, "events."+eventID+".name", fallback)
}

// Reason returns the localized description of an outcome reason token.
// Unlisted tokens (the escalating curiosity bars) fall back to the raw
// token.
func Reason(tag language.Tag, token string) string {
	return lookup(tag, "reasons."+token, token)
}

func lookup(tag language.Tag, key, fallback string) string {
	if value, ok := catalog.Default().Message(tag.String(), key); ok {
		return value
	}
	return fallback
}
