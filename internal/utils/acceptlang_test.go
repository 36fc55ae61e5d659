package utils

import "testing"

func TestDetermineLocale(t *testing.T) {
	cases := []struct {
		name, query, accept, want string
	}{
		{"query wins", "zh-CN", "en-US,en;q=0.9,zh;q=0.8", "zh"},
		{"header order", "", "en-US,en;q=0.9,zh;q=0.8", "en"},
		{"higher q", "", "zh;q=0.9,en;q=0.8", "zh"},
		{"underscore tag", "", "zh_TW", "zh"},
		{"q zero excluded", "", "zh;q=0,en;q=0.1", "en"},
		{"bad q skipped", "", "zh;q=abc,en;q=0.5", "en"},
		{"fallback", "", "fr-FR,es;q=0.9", "en"},
	}
	for _, tc := range cases {
		if got := DetermineLocale(tc.query, tc.accept, SupportedLocales, DefaultLocale); got != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestDetermineLocale_UnsupportedDefault(t *testing.T) {
	if got := DetermineLocale("", "", []string{"zh"}, "fr"); got != "zh" {
		t.Fatalf("want first supported, got %s", got)
	}
}
