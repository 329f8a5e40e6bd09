package models

import "sort"

type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
)

// SupportedPlatforms is also the order in which a post's targets are attempted.
var SupportedPlatforms = []Platform{
	PlatformTwitter,
	PlatformFacebook,
	PlatformInstagram,
	PlatformLinkedIn,
}

func ParsePlatform(name string) (Platform, bool) {
	for _, p := range SupportedPlatforms {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// TargetOrder returns the platform keys flagged true in targets: supported
// platforms first in SupportedPlatforms order, then unknown keys sorted.
func TargetOrder(targets map[string]bool) []string {
	order := make([]string, 0, len(targets))
	for _, p := range SupportedPlatforms {
		if targets[string(p)] {
			order = append(order, string(p))
		}
	}

	var unknown []string
	for name, selected := range targets {
		if !selected {
			continue
		}
		if _, ok := ParsePlatform(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)

	return append(order, unknown...)
}
