package service

import "strings"

const managedTool = "linear-engine"

const managedSentinel = "managedBy: " + managedTool

// Older versions wrote the marker as a frontmatter-style fence; stripping
// still understands it at either end of a description.
const managedFence = "---\n" + managedSentinel + "\n---"

// WrapManaged prepends the ownership sentinel to body, separated by a blank
// line.
func WrapManaged(body string) string {
	if body == "" {
		return managedSentinel
	}
	return managedSentinel + "\n\n" + body
}

// StripManaged returns the semantic body of a description: the leading bare
// sentinel, or the legacy fenced form at start or end, removed. A
// description that never carried the sentinel is returned unchanged.
func StripManaged(description string) string {
	if description == managedSentinel {
		return ""
	}
	if rest, ok := strings.CutPrefix(description, managedSentinel+"\n"); ok {
		return strings.TrimPrefix(rest, "\n")
	}
	if rest, ok := strings.CutPrefix(description, managedFence); ok {
		return strings.TrimLeft(rest, "\n")
	}
	if rest, ok := strings.CutSuffix(description, managedFence); ok {
		return strings.TrimRight(rest, "\n")
	}
	return description
}
