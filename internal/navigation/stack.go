// Package navigation models the screen stack: a path of named screens with
// push, pop and replace semantics and per-screen parameters.
package navigation

import (
	"errors"
	"fmt"
	"sync"
)

type Screen string

const (
	ScreenSplash          Screen = "splash"
	ScreenLogin           Screen = "login"
	ScreenDashboard       Screen = "dashboard"
	ScreenManifest        Screen = "manifest"
	ScreenOlderDeliveries Screen = "older-deliveries"
	ScreenRoute           Screen = "route"
	ScreenPackageDetails  Screen = "package-details"
	ScreenProofOfDelivery Screen = "proof-of-delivery"
	ScreenNotifications   Screen = "notifications"
	ScreenProfile         Screen = "profile"
)

var screens = map[Screen]bool{
	ScreenSplash:          true,
	ScreenLogin:           true,
	ScreenDashboard:       true,
	ScreenManifest:        true,
	ScreenOlderDeliveries: true,
	ScreenRoute:           true,
	ScreenPackageDetails:  true,
	ScreenProofOfDelivery: true,
	ScreenNotifications:   true,
	ScreenProfile:         true,
}

// needsPackageID lists the screens whose parameter is mandatory.
var needsPackageID = map[Screen]bool{
	ScreenPackageDetails:  true,
	ScreenProofOfDelivery: true,
}

var ErrEmptyStack = errors.New("navigation stack is empty")

// Entry is one frame of the stack.
type Entry struct {
	Screen    Screen `json:"screen"`
	PackageID string `json:"package_id,omitempty"`
}

// Stack is the session's navigation state. A fresh stack starts on the
// splash screen.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
}

func NewStack() *Stack {
	return &Stack{entries: []Entry{{Screen: ScreenSplash}}}
}

func validate(e Entry) error {
	if !screens[e.Screen] {
		return fmt.Errorf("unknown screen %q", e.Screen)
	}
	if needsPackageID[e.Screen] && e.PackageID == "" {
		return fmt.Errorf("screen %s requires a package id", e.Screen)
	}
	if !needsPackageID[e.Screen] && e.PackageID != "" {
		return fmt.Errorf("screen %s takes no package id", e.Screen)
	}
	return nil
}

// Push adds a screen on top of the stack.
func (s *Stack) Push(e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return nil
}

// Replace discards the whole stack and makes the screen its only frame.
// Login to dashboard uses this so back never returns to login.
func (s *Stack) Replace(e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = []Entry{e}
	s.mu.Unlock()
	return nil
}

// Back pops the top screen and returns the one now showing. Popping the
// last frame is rejected.
func (s *Stack) Back() (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) <= 1 {
		return Entry{}, ErrEmptyStack
	}
	s.entries = s.entries[:len(s.entries)-1]
	return s.entries[len(s.entries)-1], nil
}

// Current returns the screen on top.
func (s *Stack) Current() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[len(s.entries)-1]
}

// Path returns the stack bottom-up.
func (s *Stack) Path() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
