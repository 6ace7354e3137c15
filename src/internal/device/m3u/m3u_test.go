package m3u

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	// no #EXTM3U header required, CRLF separators as written by the sync
	pl := Parse(strings.NewReader("music/a.mp3\r\nmusic/sub/b.mp3"))
	assert.Equal(t, []string{"music/a.mp3", "music/sub/b.mp3"}, pl.Paths())
}

func TestParseSkipsURLs(t *testing.T) {
	content := "music/a.mp3\r\nhttp://example.com/radio.mp3\r\nmusic/b.mp3"
	pl := Parse(strings.NewReader(content))
	assert.Equal(t, []string{"music/a.mp3", "music/b.mp3"}, pl.Paths())
}

func TestParseEmpty(t *testing.T) {
	pl := Parse(strings.NewReader(""))
	assert.Empty(t, pl.Paths())
}

func TestParseSkipsBlankLines(t *testing.T) {
	pl := Parse(strings.NewReader("music/a.mp3\r\n\r\nmusic/b.mp3\r\n"))
	assert.Equal(t, []string{"music/a.mp3", "music/b.mp3"}, pl.Paths())
}
