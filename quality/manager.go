package quality

import "log/slog"

// Listener receives the active profile.
type Listener func(Profile)

// Manager owns the tier table and the current tier index. It notifies
// subscribers whenever the tier changes.
type Manager struct {
	table     Table
	current   Tier
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewManager creates a manager starting at the given tier.
func NewManager(table Table, initial Tier) *Manager {
	if !initial.Valid() {
		initial = TierMedium
	}
	return &Manager{
		table:     table,
		current:   initial,
		listeners: make(map[int]Listener),
	}
}

// Tier returns the active tier.
func (m *Manager) Tier() Tier {
	return m.current
}

// Current returns the active profile.
func (m *Manager) Current() Profile {
	return m.table[m.current]
}

// Peek returns the profile one step in the given direction without moving.
// ok is false at the boundary.
func (m *Manager) Peek(direction int) (Profile, bool) {
	next, ok := m.step(direction)
	if !ok {
		return Profile{}, false
	}
	return m.table[next], true
}

// SetTier jumps directly to a tier. It is a no-op if already there.
func (m *Manager) SetTier(t Tier) {
	if !t.Valid() || t == m.current {
		return
	}
	prev := m.current
	m.current = t
	slog.Info("quality tier set", "from", prev.String(), "to", t.String())
	m.notify()
}

// Adjust moves one tier in the given direction (-1 or +1). It returns false
// when already at the boundary in that direction, in which case nothing
// changes and no subscriber is notified.
func (m *Manager) Adjust(direction int) bool {
	next, ok := m.step(direction)
	if !ok {
		return false
	}
	prev := m.current
	m.current = next
	slog.Info("quality tier adjusted", "from", prev.String(), "to", next.String(), "direction", direction)
	m.notify()
	return true
}

// Subscribe registers a listener for future changes and immediately calls
// it with the current profile. The returned function removes the listener.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.order = append(m.order, id)

	fn(m.Current())

	return func() {
		if _, ok := m.listeners[id]; !ok {
			return
		}
		delete(m.listeners, id)
		for i, v := range m.order {
			if v == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
}

// step computes the neighbouring tier.
func (m *Manager) step(direction int) (Tier, bool) {
	var next Tier
	switch {
	case direction < 0:
		next = m.current - 1
	case direction > 0:
		next = m.current + 1
	default:
		return m.current, false
	}
	if !next.Valid() {
		return m.current, false
	}
	return next, true
}

// notify calls listeners in subscription order.
func (m *Manager) notify() {
	p := m.Current()
	// Copy so listeners may unsubscribe during notification
	ids := append([]int(nil), m.order...)
	for _, id := range ids {
		if fn, ok := m.listeners[id]; ok {
			fn(p)
		}
	}
}
