package twin

import (
	"fmt"
	"net/url"
	"strings"
)

// exportPath is the platform's username-lookup path. A bare username or an
// @username locator is resolved against the configured export base.
const exportPath = "api/minecraft/export/username"

// chatPathSegment is the trailing segment every twin chat endpoint ends with.
// Relative audio locators are resolved against the endpoint with this segment
// removed.
const chatPathSegment = "chat"

// NormalizeLocator turns an operator-supplied locator into a fetchable URL.
// Precedence: absolute URL as-is, "@name" and bare usernames (no slash, no
// dot) via the export lookup, anything else passed through unchanged.
func NormalizeLocator(locator, exportBase string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", &ValidationError{Msg: "locator must not be empty"}
	}

	if u, err := url.Parse(locator); err == nil && u.IsAbs() {
		return locator, nil
	}

	if username, ok := strings.CutPrefix(locator, "@"); ok {
		return exportURL(exportBase, username)
	}

	if !strings.ContainsAny(locator, "/.") {
		return exportURL(exportBase, locator)
	}

	// Assume a direct resource locator, e.g. a local path.
	return locator, nil
}

func exportURL(exportBase, username string) (string, error) {
	if username == "" {
		return "", &ValidationError{Msg: "username must not be empty"}
	}
	u, err := url.JoinPath(exportBase, exportPath, username)
	if err != nil {
		return "", &ValidationError{Msg: fmt.Sprintf("invalid export base %q", exportBase)}
	}
	return u, nil
}

// ResolveAudioURL resolves a reply's audio locator. Absolute locators are
// used verbatim; relative ones are joined onto the chat endpoint with its
// trailing chat segment stripped.
func ResolveAudioURL(endpoint, locator string) (string, error) {
	if locator == "" {
		return "", &ValidationError{Msg: "audio locator must not be empty"}
	}

	if u, err := url.Parse(locator); err == nil && u.IsAbs() {
		return locator, nil
	}

	base, err := url.Parse(endpoint)
	if err != nil || !base.IsAbs() {
		return "", &FormatError{Op: "resolve audio", Reason: fmt.Sprintf("invalid chat endpoint %q", endpoint)}
	}

	segments := strings.Split(strings.Trim(base.Path, "/"), "/")
	if n := len(segments); n > 0 && segments[n-1] == chatPathSegment {
		segments = segments[:n-1]
	}
	base.Path = "/" + strings.Join(segments, "/")
	base.RawQuery = ""
	base.Fragment = ""

	resolved, err := url.JoinPath(base.String(), locator)
	if err != nil {
		return "", &FormatError{Op: "resolve audio", Reason: fmt.Sprintf("invalid audio locator %q", locator)}
	}
	return resolved, nil
}
