package buildbot_test

import (
	"testing"

	"github.com/buildbot-tools/bbinfo/internal/buildbot"
)

func TestBuilderURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		masterURL string
		builder   string
		want      string
	}{
		{
			name:      "plain builder name",
			masterURL: "https://buildbot.example.org",
			builder:   "trunk-osx",
			want:      "https://buildbot.example.org/all/builders/trunk-osx",
		},
		{
			name:      "escapes spaces in builder names",
			masterURL: "https://buildbot.example.org",
			builder:   "AMD64 Windows10",
			want:      "https://buildbot.example.org/all/builders/AMD64%20Windows10",
		},
		{
			name:      "strips trailing slash from the master URL",
			masterURL: "https://buildbot.example.org/",
			builder:   "trunk-osx",
			want:      "https://buildbot.example.org/all/builders/trunk-osx",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := buildbot.BuilderURL(tt.masterURL, tt.builder); got != tt.want {
				t.Errorf("BuilderURL(%q, %q) = %q, want %q", tt.masterURL, tt.builder, got, tt.want)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	got := buildbot.BuildURL("https://buildbot.example.org", "AMD64 Windows10", 4178)
	want := "https://buildbot.example.org/all/builders/AMD64%20Windows10/builds/4178"
	if got != want {
		t.Errorf("BuildURL() = %q, want %q", got, want)
	}
}
