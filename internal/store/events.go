package store

type EventKind int

const (
	// EventHydrated follows a login that loaded the session from storage.
	EventHydrated EventKind = iota
	// EventCleared follows a logout.
	EventCleared
	EventAdded
	EventConfirmed
	EventRolledBack
	EventRemoved
	EventRestored
	EventUpdated
	EventInvestments
	EventProfile
	EventPreferences
)

func (k EventKind) String() string {
	switch k {
	case EventHydrated:
		return "hydrated"
	case EventCleared:
		return "cleared"
	case EventAdded:
		return "added"
	case EventConfirmed:
		return "confirmed"
	case EventRolledBack:
		return "rolled_back"
	case EventRemoved:
		return "removed"
	case EventRestored:
		return "restored"
	case EventUpdated:
		return "updated"
	case EventInvestments:
		return "investments"
	case EventProfile:
		return "profile"
	case EventPreferences:
		return "preferences"
	}
	return "unknown"
}

// Event describes a state change. Count is the transaction count after it.
type Event struct {
	Kind  EventKind
	Count int
	ID    string
}

// Resets reports whether the event replaces the transaction list wholesale
// instead of changing it record by record.
func (e Event) Resets() bool {
	return e.Kind == EventHydrated || e.Kind == EventCleared
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every event. Callbacks run on the goroutine that
// made the change, after the store lock is released.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// eventLocked snapshots the subscribers with the event so publish can run unlocked.
func (s *Store) eventLocked(kind EventKind, id string) pendingEvent {
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	return pendingEvent{
		event: Event{Kind: kind, Count: len(s.transactions), ID: id},
		subs:  subs,
	}
}

type pendingEvent struct {
	event Event
	subs  []subscriber
}

func (p pendingEvent) publish() {
	for _, sub := range p.subs {
		sub.fn(p.event)
	}
}
