package auth

import "strings"

// UnknownOS is reported when the user agent matches no known platform.
const UnknownOS = "Unknown OS"

var osSignatures = []struct {
	needles []string
	label   string
}{
	{[]string{"Win"}, "Windows"},
	{[]string{"iPhone", "iPad", "iPod"}, "iOS"},
	{[]string{"Mac"}, "MacOS"},
	{[]string{"Android"}, "Android"},
	{[]string{"X11"}, "UNIX"},
	{[]string{"Linux"}, "Linux"},
}

// ParseOS derives a coarse operating system label from a User-Agent header.
// Mobile platforms are matched before the desktop kernels they embed.
func ParseOS(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return UnknownOS
	}
	for _, sig := range osSignatures {
		for _, needle := range sig.needles {
			if strings.Contains(userAgent, needle) {
				return sig.label
			}
		}
	}
	return UnknownOS
}
