// Package useragent classifies request user agents into the client
// categories shown on the analytics dashboard.
package useragent

import "strings"

// Category is a coarse client type.
type Category string

const (
	Desktop        Category = "Desktop"
	IOS            Category = "iOS"
	Android        Category = "Android"
	MobileSafari   Category = "Mobile Safari"
	AndroidBrowser Category = "Android Browser"
)

// Categories lists every category in dashboard series order.
func Categories() []Category {
	return []Category{Desktop, IOS, Android, MobileSafari, AndroidBrowser}
}

// Classify returns the most likely category for a user agent string.
// Native apps are matched by their HTTP stack (CFNetwork on iOS, okhttp on
// Android) before falling back to browser markers.
func Classify(ua string) Category {
	switch {
	case strings.Contains(ua, "CFNetwork"):
		return IOS
	case strings.Contains(ua, "okhttp"):
		return Android
	case strings.Contains(ua, "Android"):
		return AndroidBrowser
	case strings.Contains(ua, "Mobile") && strings.Contains(ua, "Safari"):
		return MobileSafari
	default:
		return Desktop
	}
}
