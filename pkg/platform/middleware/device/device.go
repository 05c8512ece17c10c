// Package device turns raw User-Agent strings into display names recorded on
// audit events ("Chrome on Mac OS X").
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// DisplayName summarises a User-Agent as "<browser> on <os>".
func DisplayName(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknownDevice
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if ua.Mobile() && ua.Platform() != "" && !strings.Contains(os, ua.Platform()) {
		os = ua.Platform() + " " + os
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if strings.TrimSpace(os) == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser) + " on " + strings.TrimSpace(os)
}
