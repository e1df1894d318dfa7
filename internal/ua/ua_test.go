package ua

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		browser string
		os      string
		device  string
		bot     bool
	}{
		{
			name:    "chrome on mac",
			raw:     "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
			browser: "Chrome",
			os:      "MacOSX",
			device:  "Desktop",
		},
		{
			name:   "googlebot",
			raw:    "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			device: "Bot",
			bot:    true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.raw)
			if tc.browser != "" && got.Browser != tc.browser {
				t.Errorf("Browser = %q, want %q", got.Browser, tc.browser)
			}
			if tc.os != "" && got.OS != tc.os {
				t.Errorf("OS = %q, want %q", got.OS, tc.os)
			}
			if got.Device != tc.device {
				t.Errorf("Device = %q, want %q", got.Device, tc.device)
			}
			if got.IsBot != tc.bot {
				t.Errorf("IsBot = %v, want %v", got.IsBot, tc.bot)
			}
		})
	}
}

func TestVersionToString(t *testing.T) {
	v := Parse("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36")
	if v.Version != "125" {
		t.Errorf("Version = %q, want 125", v.Version)
	}
	if v.OSVersion != "10.15.7" {
		t.Errorf("OSVersion = %q, want 10.15.7", v.OSVersion)
	}
}

func TestInfoString(t *testing.T) {
	i := Info{Browser: "Firefox", Version: "126", OS: "Linux", Device: "Desktop"}
	if got, want := i.String(), "Firefox/126 Linux Desktop"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
