package notify

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventReader(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		": keep-alive",
		"retry: 1500",
		"",
		"id: 41",
		"event: badge",
		"data: {\"type\":\"orders\",",
		"data: \"count\":3}",
		"",
		"data:plain\r",
		"\r",
		"event: ignored-without-data",
		"",
		"data: tail-without-blank-line",
	}, "\n")

	er := newEventReader(strings.NewReader(body))

	ev, err := er.next()
	require.NoError(t, err)
	assert.Equal(t, "badge", ev.Type)
	assert.Equal(t, "41", ev.ID)
	assert.Equal(t, "{\"type\":\"orders\",\n\"count\":3}", ev.Data)
	assert.Equal(t, 1500*time.Millisecond, er.retry)

	ev, err = er.next()
	require.NoError(t, err)
	assert.Equal(t, "message", ev.Type)
	assert.Equal(t, "plain", ev.Data)
	assert.Equal(t, "41", er.lastID)

	_, err = er.next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEventReader_IgnoresInvalidFields(t *testing.T) {
	t.Parallel()

	er := newEventReader(strings.NewReader("retry: soon\nid: a\x00b\nunknown: x\ndata: ok\n\n"))
	ev, err := er.next()
	require.NoError(t, err)
	assert.Equal(t, "ok", ev.Data)
	assert.Empty(t, ev.ID)
	assert.Zero(t, er.retry)
}
