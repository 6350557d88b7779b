package mocks

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

// Store is an in-memory ports.Store. Each Tx works on a copy of the state that replaces
// the committed state only when the callback returns nil, so a failed operation leaves
// nothing behind.
type Store struct {
	mu    sync.Mutex
	state *state

	// Error injection
	NotificationError error
	MembersError      error
	PingError         error

	TxCount   int
	ViewCount int
}

var _ ports.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) snapshot() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	s.mu.Lock()
	s.TxCount++
	notifyErr, membersErr := s.NotificationError, s.MembersError
	s.mu.Unlock()

	work := s.snapshot()
	if err := fn(ctx, &repos{st: work, notifyErr: notifyErr, membersErr: membersErr}); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	s.mu.Lock()
	s.ViewCount++
	notifyErr, membersErr := s.NotificationError, s.MembersError
	s.mu.Unlock()
	return fn(ctx, &repos{st: s.snapshot(), notifyErr: notifyErr, membersErr: membersErr})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.PingError
}

// AddUser seeds a user directly, bypassing registration.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Email == "" {
		u.Email = u.ID + "@example.com"
	}
	s.state.users[u.ID] = u
	s.state.touch(u.ID)
	return u
}

// AddLink seeds an institution link.
func (s *Store) AddLink(userID, institutionID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := userID + ":" + institutionID
	s.state.links[id] = domain.InstitutionLink{ID: id, UserID: userID, InstitutionID: institutionID, CreatedAt: at}
	s.state.touch(id)
}

// NotificationsFor returns the user's notifications newest first.
func (s *Store) NotificationsFor(userID string) []domain.Notification {
	st := s.snapshot()
	out, _ := (&notificationRepo{st: st}).ListByUser(context.Background(), userID)
	return out
}

// AllNotifications returns every stored notification in insertion order.
func (s *Store) AllNotifications() []domain.Notification {
	st := s.snapshot()
	return sortedBy(st, values(st.notifications), func(n domain.Notification) string { return n.ID })
}

func (s *Store) Enrollments() []domain.Enrollment {
	st := s.snapshot()
	return sortedBy(st, values(st.enrollments), func(e domain.Enrollment) string { return e.ID })
}

func (s *Store) Connections() []domain.Connection {
	st := s.snapshot()
	return sortedBy(st, values(st.connections), func(c domain.Connection) string { return c.ID })
}

func (s *Store) Messages() []domain.Message {
	st := s.snapshot()
	return sortedBy(st, values(st.messages), func(m domain.Message) string { return m.ID })
}

func (s *Store) Post(id string) (domain.Post, bool) {
	st := s.snapshot()
	p, ok := st.posts[id]
	return p, ok
}

type state struct {
	seq   int64
	order map[string]int64

	users          map[string]domain.User
	children       map[string]domain.Child
	cuidotecas     map[string]domain.Cuidoteca
	enrollments    map[string]domain.Enrollment
	cuidadors      map[string]domain.CuidadorEnrollment
	links          map[string]domain.InstitutionLink
	connections    map[string]domain.Connection
	notifications  map[string]domain.Notification
	posts          map[string]domain.Post
	votes          map[string]domain.PostVote
	events         map[string]domain.Event
	rsvps          map[string]domain.EventRsvp
	participations map[string]domain.EventParticipation
	messages       map[string]domain.Message
	documents      map[string]domain.Document
}

func newState() *state {
	return &state{
		order:          map[string]int64{},
		users:          map[string]domain.User{},
		children:       map[string]domain.Child{},
		cuidotecas:     map[string]domain.Cuidoteca{},
		enrollments:    map[string]domain.Enrollment{},
		cuidadors:      map[string]domain.CuidadorEnrollment{},
		links:          map[string]domain.InstitutionLink{},
		connections:    map[string]domain.Connection{},
		notifications:  map[string]domain.Notification{},
		posts:          map[string]domain.Post{},
		votes:          map[string]domain.PostVote{},
		events:         map[string]domain.Event{},
		rsvps:          map[string]domain.EventRsvp{},
		participations: map[string]domain.EventParticipation{},
		messages:       map[string]domain.Message{},
		documents:      map[string]domain.Document{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:            s.seq,
		order:          maps.Clone(s.order),
		users:          maps.Clone(s.users),
		children:       maps.Clone(s.children),
		cuidotecas:     maps.Clone(s.cuidotecas),
		enrollments:    maps.Clone(s.enrollments),
		cuidadors:      maps.Clone(s.cuidadors),
		links:          maps.Clone(s.links),
		connections:    maps.Clone(s.connections),
		notifications:  maps.Clone(s.notifications),
		posts:          maps.Clone(s.posts),
		votes:          maps.Clone(s.votes),
		events:         maps.Clone(s.events),
		rsvps:          maps.Clone(s.rsvps),
		participations: maps.Clone(s.participations),
		messages:       maps.Clone(s.messages),
		documents:      maps.Clone(s.documents),
	}
}

// touch records insertion order, used to break timestamp ties deterministically.
func (s *state) touch(id string) {
	if _, ok := s.order[id]; ok {
		return
	}
	s.seq++
	s.order[id] = s.seq
}

// sortedBy orders items by insertion.
func sortedBy[T any](s *state, items []T, id func(T) string) []T {
	slices.SortFunc(items, func(a, b T) int { return cmp.Compare(s.order[id(a)], s.order[id(b)]) })
	return items
}

func values[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func filter[V any](m map[string]V, keep func(V) bool) []V {
	var out []V
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
