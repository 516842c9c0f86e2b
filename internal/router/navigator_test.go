package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_PushReplaceBack(t *testing.T) {
	h := NewHistory("/")

	h.Navigate("/admin/dashboard", NavigateOptions{})
	h.Navigate("/login", NavigateOptions{Replace: true, Reason: "no_session"})
	assert.Equal(t, "/login", h.Current())

	// The guarded page was replaced, so back returns to the start.
	prev, ok := h.Back()
	assert.True(t, ok)
	assert.Equal(t, "/", prev)

	_, ok = h.Back()
	assert.False(t, ok)
}

func TestHistory_ListenersAndLog(t *testing.T) {
	h := NewHistory("")
	assert.Equal(t, "/", h.Current())

	var seen []Navigation
	h.OnNavigate(func(n Navigation) { seen = append(seen, n) })

	h.Navigate("/signup", NavigateOptions{})
	h.Navigate("/login", NavigateOptions{Replace: true})

	want := []Navigation{
		{From: "/", To: "/signup"},
		{From: "/signup", To: "/login", Replace: true},
	}
	assert.Equal(t, want, seen)
	assert.Equal(t, want, h.Log())
	assert.Equal(t, 1, h.Count("/login"))
	assert.Equal(t, 0, h.Count("/admin/dashboard"))
}

func TestHistory_ListenerMayUseHistory(t *testing.T) {
	h := NewHistory("/")

	var current []string
	var late int
	h.OnNavigate(func(n Navigation) {
		current = append(current, h.Current())
		h.OnNavigate(func(Navigation) { late++ })
	})

	h.Navigate("/login", NavigateOptions{Replace: true})
	h.Navigate("/signup", NavigateOptions{})

	assert.Equal(t, []string{"/login", "/signup"}, current)
	assert.Equal(t, 1, late, "a listener added during a navigation sees only later ones")
}
