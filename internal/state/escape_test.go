package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "-.json"},
		{"/mnt/enc", "mnt-enc.json"},
		{"/mnt/enc/", "mnt-enc.json"},
		{"/mnt/my-disk", `mnt-my\x2ddisk.json`},
		{"/.hidden", `\x2ehidden.json`},
		{"/mnt/a b", `mnt-a\x20b.json`},
	}

	for _, tt := range tests {
		got, err := escapeKey(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestEscapeKeyRejects(t *testing.T) {
	for _, in := range []string{"", "mnt/enc", "/mnt/\x00", "/" + strings.Repeat("é", 100)} {
		_, err := escapeKey(in)
		assert.ErrorIs(t, err, ErrInvalidKey, "%q", in)
	}
}

func TestUnescapeKeyRejects(t *testing.T) {
	for _, in := range []string{"mnt-enc", ".json", `mnt\x2.json`, `mnt\q20.json`, `mnt\xzz.json`} {
		_, err := unescapeKey(in)
		assert.ErrorIs(t, err, ErrInvalidKey, "%q", in)
	}
}

func TestPropertyEscapeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z0-9 ._:\-\\é]{1,6}`), 1, 4).Draw(t, "parts")
		mountPoint := "/" + strings.Join(parts, "/")
		for _, p := range parts {
			if p == "." || p == ".." {
				t.Skip("dot segments are cleaned away")
			}
		}

		name, err := escapeKey(mountPoint)
		if err != nil {
			t.Fatalf("escape %q: %v", mountPoint, err)
		}
		if strings.Contains(name, "/") {
			t.Fatalf("escaped name %q contains a slash", name)
		}
		back, err := unescapeKey(name)
		if err != nil {
			t.Fatalf("unescape %q: %v", name, err)
		}
		if back != mountPoint {
			t.Fatalf("round trip: %q -> %q -> %q", mountPoint, name, back)
		}
	})
}
