package scrape

import (
	"strings"
	"testing"
	"time"
)

func TestAbortTripIsSticky(t *testing.T) {
	a := NewAbort()
	if a.Tripped() {
		t.Fatal("fresh abort should not be tripped")
	}
	a.Trip()
	a.Trip() // second trip is a no-op
	if !a.Tripped() {
		t.Fatal("abort should stay tripped")
	}
}

func waitTripped(t *testing.T, a *Abort) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.Tripped() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("abort was never tripped")
}

func TestListenKeyboardTripsOnQ(t *testing.T) {
	a := NewAbort()
	a.ListenKeyboard(strings.NewReader("hello\nq\n"))
	waitTripped(t, a)
}

func TestListenKeyboardTripsOnQuit(t *testing.T) {
	a := NewAbort()
	a.ListenKeyboard(strings.NewReader("QUIT\n"))
	waitTripped(t, a)
}

func TestListenKeyboardIgnoresOtherInput(t *testing.T) {
	a := NewAbort()
	a.ListenKeyboard(strings.NewReader("quick brown fox\nqq\n"))
	time.Sleep(50 * time.Millisecond)
	if a.Tripped() {
		t.Fatal("unrelated input should not trip the abort")
	}
}
