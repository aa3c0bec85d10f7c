package router

import (
	"net/url"
	"strings"
)

// ParseTicketRef maps scanned QR content to a status path. It accepts an
// absolute URL, any text containing /queue-status/<id> or /status/<id>, or a
// bare ticket id.
func ParseTicketRef(data string) (string, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", false
	}
	if strings.HasPrefix(data, "http://") || strings.HasPrefix(data, "https://") {
		u, err := url.Parse(data)
		if err != nil {
			return "", false
		}
		data = u.Path
	}
	for _, marker := range []string{"/queue-status/", "/status/"} {
		if idx := strings.LastIndex(data, marker); idx >= 0 {
			id := strings.Trim(data[idx+len(marker):], "/")
			if id == "" || strings.Contains(id, "/") {
				return "", false
			}
			return StatusPath(id), true
		}
	}
	if strings.ContainsAny(data, "/ ?#") {
		return "", false
	}
	return StatusPath(data), true
}
