package progress

import (
	"bytes"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer lets the spinner goroutine and the test share a buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_Silent(t *testing.T) {
	var buf syncBuffer
	called := false
	err := Run("Loading shortlets", Options{Writer: &buf}, func() error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, buf.String())
}

func TestRun_Plain(t *testing.T) {
	var buf syncBuffer
	boom := stderrors.New("boom")

	err := Run("Submitting booking", Options{Writer: &buf, Plain: true, Animate: true}, func() error { return boom })

	assert.ErrorIs(t, err, boom)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Submitting booking...", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Submitting booking failed ("), lines[1])
	assert.NotContains(t, buf.String(), "\r", "plain output never redraws")
}

func TestRun_Animate(t *testing.T) {
	var buf syncBuffer
	fast := spinner.Spinner{Frames: []string{"a", "b"}, FPS: 5 * time.Millisecond}

	err := Run("Loading", Options{Writer: &buf, Animate: true, Spinner: fast}, func() error {
		time.Sleep(40 * time.Millisecond)
		return nil
	})

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "\ra Loading ")
	assert.Contains(t, out, "\rb Loading ")
	assert.True(t, strings.HasSuffix(out, strings.Repeat(" ", len("Loading")+16)+"\r"), "the line is cleared last")
}

func TestRun_AnimateDefaultSpinner(t *testing.T) {
	var buf syncBuffer
	require.NoError(t, Run("Loading", Options{Writer: &buf, Animate: true}, func() error { return nil }))
	assert.Contains(t, buf.String(), spinner.MiniDot.Frames[0]+" Loading")
}

func TestElapsed(t *testing.T) {
	cases := map[time.Duration]string{
		450 * time.Millisecond:  "450ms",
		2300 * time.Millisecond: "2.3s",
		65 * time.Second:        "1m05s",
		10 * time.Minute:        "10m00s",
	}
	for d, want := range cases {
		assert.Equal(t, want, Elapsed(d))
	}
}
