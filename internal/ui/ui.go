package ui

// Package ui holds the observable UI-facing state: theme mode, sidebar
// collapse, and an in-memory notification center fed by classified request
// errors. It reuses the same snapshot-store pattern as the auth session and
// persists preferences through the shared key-value medium.

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/modernstarter/sessionkit/internal/observability/notify"
	"github.com/modernstarter/sessionkit/internal/ports"
	"github.com/modernstarter/sessionkit/internal/state"
)

// Theme is the UI color mode.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Level grades a notification for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Notification is one entry in the notification center.
type Notification struct {
	ID        string
	Level     Level
	Title     string
	Message   string
	Timestamp time.Time
}

// State is the UI snapshot published to subscribers.
type State struct {
	Theme            Theme
	SidebarCollapsed bool
	Notifications    []Notification
}

const defaultMaxNotifications = 50

// Options groups dependencies for Store.
type Options struct {
	// Prefs persists theme and sidebar state; nil disables persistence.
	Prefs ports.KeyValue

	// ThemeKey and SidebarKey name the persisted entries. Defaults:
	// "theme-mode" and "sidebarCollapsed".
	ThemeKey   string
	SidebarKey string

	DefaultTheme     Theme
	MaxNotifications int
	Logger           *slog.Logger
}

// Store is the observable UI state container.
type Store struct {
	store      *state.Store[State]
	prefs      ports.KeyValue
	themeKey   string
	sidebarKey string
	maxKept    int
	logger     *slog.Logger
}

// NewStore constructs a UI store seeded with the default theme.
func NewStore(opts Options) *Store {
	theme := opts.DefaultTheme
	if theme != ThemeDark {
		theme = ThemeLight
	}
	themeKey := opts.ThemeKey
	if themeKey == "" {
		themeKey = "theme-mode"
	}
	sidebarKey := opts.SidebarKey
	if sidebarKey == "" {
		sidebarKey = "sidebarCollapsed"
	}
	maxKept := opts.MaxNotifications
	if maxKept <= 0 {
		maxKept = defaultMaxNotifications
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		store:      state.New(State{Theme: theme}),
		prefs:      opts.Prefs,
		themeKey:   themeKey,
		sidebarKey: sidebarKey,
		maxKept:    maxKept,
		logger:     logger,
	}
}

// Current returns a snapshot of the UI state.
func (s *Store) Current() State {
	return s.store.Current()
}

// Subscribe registers a listener; see state.Store for delivery semantics.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.store.Subscribe(fn)
}

// Hydrate loads persisted preferences into the state. Missing or unreadable
// values leave the defaults untouched.
func (s *Store) Hydrate(ctx context.Context) {
	if s.prefs == nil {
		return
	}

	if raw, err := s.prefs.Get(ctx, s.themeKey); err != nil {
		s.logger.DebugContext(ctx, "read persisted theme", "error", err)
	} else if t := Theme(raw); t == ThemeLight || t == ThemeDark {
		s.store.Update(func(st State) State {
			st.Theme = t
			return st
		})
	}

	if raw, err := s.prefs.Get(ctx, s.sidebarKey); err != nil {
		s.logger.DebugContext(ctx, "read persisted sidebar state", "error", err)
	} else if raw == "true" || raw == "false" {
		s.store.Update(func(st State) State {
			st.SidebarCollapsed = raw == "true"
			return st
		})
	}
}

// SetTheme switches the color mode and persists it.
func (s *Store) SetTheme(ctx context.Context, theme Theme) {
	if theme != ThemeLight && theme != ThemeDark {
		return
	}
	s.persist(ctx, s.themeKey, string(theme))
	s.store.Update(func(st State) State {
		st.Theme = theme
		return st
	})
}

// ToggleTheme flips between light and dark.
func (s *Store) ToggleTheme(ctx context.Context) {
	next := ThemeDark
	if s.store.Current().Theme == ThemeDark {
		next = ThemeLight
	}
	s.SetTheme(ctx, next)
}

// SetSidebarCollapsed stores the sidebar state and persists it.
func (s *Store) SetSidebarCollapsed(ctx context.Context, collapsed bool) {
	value := "false"
	if collapsed {
		value = "true"
	}
	s.persist(ctx, s.sidebarKey, value)
	s.store.Update(func(st State) State {
		st.SidebarCollapsed = collapsed
		return st
	})
}

// ToggleSidebar flips the sidebar state.
func (s *Store) ToggleSidebar(ctx context.Context) {
	s.SetSidebarCollapsed(ctx, !s.store.Current().SidebarCollapsed)
}

// Notify adds a notification to the front of the center, assigning an ID and
// timestamp when absent, and drops the oldest entries past the retention cap.
func (s *Store) Notify(n Notification) Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}

	s.store.Update(func(st State) State {
		kept := append([]Notification{n}, st.Notifications...)
		if len(kept) > s.maxKept {
			kept = kept[:s.maxKept]
		}
		st.Notifications = kept
		return st
	})
	return n
}

// Dismiss removes the notification with the given ID; unknown IDs are a no-op.
func (s *Store) Dismiss(id string) {
	s.store.Update(func(st State) State {
		kept := st.Notifications[:0:0]
		for _, n := range st.Notifications {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		st.Notifications = kept
		return st
	})
}

// ClearNotifications empties the center.
func (s *Store) ClearNotifications() {
	s.store.Update(func(st State) State {
		st.Notifications = nil
		return st
	})
}

// NotifySink adapts the store into a notify.Sink so classified request
// errors land in the notification center.
func (s *Store) NotifySink() notify.Sink {
	return notify.SinkFunc(func(_ context.Context, event notify.ErrorEvent) error {
		s.Notify(Notification{
			Level:     levelFor(event.Kind),
			Title:     titleFor(event.Kind),
			Message:   event.Message,
			Timestamp: event.OccurredAt,
		})
		return nil
	})
}

func (s *Store) persist(ctx context.Context, key, value string) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Set(ctx, key, value); err != nil {
		s.logger.DebugContext(ctx, "persist preference", "key", key, "error", err)
	}
}

func levelFor(kind notify.Kind) Level {
	switch kind {
	case notify.KindUnauthenticated:
		return LevelWarning
	default:
		return LevelError
	}
}

func titleFor(kind notify.Kind) string {
	switch kind {
	case notify.KindServerError:
		return "Server error"
	case notify.KindTimeout:
		return "Request timeout"
	case notify.KindNetworkError:
		return "Network error"
	case notify.KindUnauthenticated:
		return "Signed out"
	default:
		return "Notice"
	}
}
