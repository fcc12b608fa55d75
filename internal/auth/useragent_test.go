package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOS(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36":                       "Windows",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15":                "MacOS",
		"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0":       "UNIX",
		"Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36":                          "Android",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15":          "iOS",
		"Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)":                                        "iOS",
		"curl/8.4.0":                                                                           UnknownOS,
		"":                                                                                     UnknownOS,
		"Wget/1.21 (linux-gnu)":                                                                UnknownOS,
		"SomeClient/1.0 (Linux)":                                                               "Linux",
	}

	for ua, want := range cases {
		require.Equal(t, want, ParseOS(ua), "user agent %q", ua)
	}
}
