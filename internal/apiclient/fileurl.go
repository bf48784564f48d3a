package apiclient

import "strings"

// ResolveFileURL turns a backend-reported file path into an absolute URL.
// Absolute URLs pass through untouched; backend-relative paths (the usual
// /uploads/... form) are prefixed with the backend base URL; a missing
// leading slash is normalised.
func (c *Client) ResolveFileURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
