package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false, false, true)

	l.Info("opening %s", "/dev/sda1")
	l.Debug("hidden")
	l.Warning("careful")

	assert.Equal(t, "[INFO] opening /dev/sda1\n[WARNING] careful\n", buf.String())
}

func TestLoggerQuietKeepsErrors(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, true, true, true)

	l.Info("a")
	l.Success("b")
	l.Error("c")

	assert.Equal(t, "[ERROR] c\n", buf.String())
}

func TestTableAlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("장치", "X")
	tbl.AddRow("a", "1")
	tbl.AddRow("abcde", "2")
	tbl.Fprint(&buf)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "장치   X", lines[0])
	assert.Equal(t, "a      1", lines[1])
	assert.Equal(t, "abcde  2", lines[2])
}

func TestTableEmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewTable("A").Fprint(&buf)
	assert.Empty(t, buf.String())
}

func TestReadPassword(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"newline", "hunter2\n", "hunter2", nil},
		{"crlf", "hunter2\r\n", "hunter2", nil},
		{"no newline", "hunter2", "hunter2", nil},
		{"first line only", "one\ntwo\n", "one", nil},
		{"empty", "\n", "", ErrEmptyPassphrase},
		{"eof", "", "", ErrEmptyPassphrase},
		{"too long", strings.Repeat("x", MaxPassphraseLen+1) + "\n", "", ErrPassphraseTooLong},
		{"overflow", strings.Repeat("x", 4096), "", ErrPassphraseTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadPassword(strings.NewReader(tt.in))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got.Bytes()))
		})
	}
}
