package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev build", Info{Version: "dev", Commit: "none", Date: "unknown"}, "dev (development build)"},
		{"empty version", Info{}, "dev (development build)"},
		{"release", Info{Version: "v0.3.0", Commit: "abc123", Date: "2026-10-01"}, "v0.3.0 (commit: abc123, built: 2026-10-01)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestGet(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	info := Get()
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.False(t, info.IsDev())
}
