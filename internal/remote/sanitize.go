package remote

import "regexp"

// Argument values are interpolated into shell command strings, so this
// allow-list is the sole gate against command injection. The whole value
// must match; partial matches are rejected.
var safeArgPattern = regexp.MustCompile(`^[a-zA-Z0-9.,_-]+$`)

// SafeArg reports whether value may be substituted into a command template.
func SafeArg(value string) bool {
	return safeArgPattern.MatchString(value)
}
