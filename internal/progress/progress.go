// Package progress shows that padup is waiting on the API.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

type Options struct {
	Writer io.Writer // default os.Stderr

	// Animate draws a spinner with the elapsed time on one line and erases
	// it when fn returns.
	Animate bool

	// Plain prints a start line and a finish line instead. It wins over
	// Animate and suits CI logs.
	Plain bool

	Spinner spinner.Spinner // default spinner.MiniDot
}

// Run calls fn while showing message. With neither Animate nor Plain set it
// only calls fn.
func Run(message string, opts Options, fn func() error) error {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	start := time.Now()

	switch {
	case opts.Plain:
		fmt.Fprintf(w, "%s...\n", message)
		err := fn()
		outcome := "done"
		if err != nil {
			outcome = "failed"
		}
		fmt.Fprintf(w, "%s %s (%s)\n", message, outcome, Elapsed(time.Since(start)))
		return err
	case opts.Animate:
		s := opts.Spinner
		if len(s.Frames) == 0 || s.FPS <= 0 {
			s = spinner.MiniDot
		}
		stop := animate(w, message, s, start)
		defer stop()
	}
	return fn()
}

// animate redraws the line every frame until the returned stop is called.
// stop waits for the last frame so nothing is drawn after the line is
// cleared.
func animate(w io.Writer, message string, s spinner.Spinner, start time.Time) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		tick := time.NewTicker(s.FPS)
		defer tick.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s %s %s", s.Frames[i%len(s.Frames)], message, Elapsed(time.Since(start)))
			select {
			case <-quit:
				return
			case <-tick.C:
			}
		}
	}()

	return func() {
		close(quit)
		<-done
		fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", len([]rune(message))+16))
	}
}

// Elapsed is a short human duration: 450ms, 2.3s, 1m05s.
func Elapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
