package mocks

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type repos struct {
	st         *state
	notifyErr  error
	membersErr error
}

func (r *repos) Users() ports.UserRepository           { return &userRepo{st: r.st} }
func (r *repos) Children() ports.ChildRepository       { return &childRepo{st: r.st} }
func (r *repos) Cuidotecas() ports.CuidotecaRepository { return &cuidotecaRepo{st: r.st} }
func (r *repos) Enrollments() ports.EnrollmentRepository {
	return &enrollmentRepo{st: r.st}
}
func (r *repos) CuidadorEnrollments() ports.CuidadorEnrollmentRepository {
	return &cuidadorRepo{st: r.st}
}
func (r *repos) InstitutionLinks() ports.InstitutionLinkRepository { return &linkRepo{st: r.st, err: r.membersErr} }
func (r *repos) Connections() ports.ConnectionRepository         { return &connectionRepo{st: r.st} }
func (r *repos) Notifications() ports.NotificationRepository {
	return &notificationRepo{st: r.st, createErr: r.notifyErr}
}
func (r *repos) Posts() ports.PostRepository         { return &postRepo{st: r.st} }
func (r *repos) Events() ports.EventRepository       { return &eventRepo{st: r.st} }
func (r *repos) Messages() ports.MessageRepository   { return &messageRepo{st: r.st} }
func (r *repos) Documents() ports.DocumentRepository { return &documentRepo{st: r.st} }

// byTime sorts by timestamp, breaking ties by insertion order.
func byTime[T any](st *state, items []T, at func(T) time.Time, id func(T) string, desc bool) []T {
	slices.SortFunc(items, func(a, b T) int {
		c := at(a).Compare(at(b))
		if c == 0 {
			c = cmp.Compare(st.order[id(a)], st.order[id(b)])
		}
		if desc {
			return -c
		}
		return c
	})
	return items
}

func get[V any](m map[string]V, id string) (*V, error) {
	v, ok := m[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &v, nil
}

func update[V any](m map[string]V, id string, v V) error {
	if _, ok := m[id]; !ok {
		return ports.ErrNotFound
	}
	m[id] = v
	return nil
}

func remove[V any](m map[string]V, id string) error {
	if _, ok := m[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m, id)
	return nil
}

type userRepo struct{ st *state }

func (r *userRepo) Create(ctx context.Context, u domain.User) error {
	for _, existing := range r.st.users {
		if existing.Email == u.Email {
			return ports.ErrDuplicate
		}
	}
	r.st.users[u.ID] = u
	r.st.touch(u.ID)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return get(r.st.users, id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.st.users {
		if u.Email == email {
			return ptr(u), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *userRepo) UpdateProfile(ctx context.Context, u domain.User) error {
	cur, ok := r.st.users[u.ID]
	if !ok {
		return ports.ErrNotFound
	}
	cur.Name, cur.Bio, cur.Phone = u.Name, u.Bio, u.Phone
	r.st.users[u.ID] = cur
	return nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.st.users[id]; ok {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(a, b domain.User) int { return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID)) })
	return out, nil
}

func (r *userRepo) Search(ctx context.Context, role domain.Role, query string, limit int) ([]domain.User, error) {
	out := filter(r.st.users, func(u domain.User) bool {
		if role != "" && u.Role != role {
			return false
		}
		return containsFold(u.Name, query) || containsFold(u.InstitutionName, query) || containsFold(u.Email, query)
	})
	slices.SortFunc(out, func(a, b domain.User) int { return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID)) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type childRepo struct{ st *state }

func (r *childRepo) Create(ctx context.Context, c domain.Child) error {
	r.st.children[c.ID] = c
	r.st.touch(c.ID)
	return nil
}

func (r *childRepo) Get(ctx context.Context, id string) (*domain.Child, error) {
	return get(r.st.children, id)
}

func (r *childRepo) Update(ctx context.Context, c domain.Child) error {
	return update(r.st.children, c.ID, c)
}

func (r *childRepo) Delete(ctx context.Context, id string) error {
	if err := remove(r.st.children, id); err != nil {
		return err
	}
	for eid, e := range r.st.enrollments {
		if e.ChildID == id {
			delete(r.st.enrollments, eid)
		}
	}
	return nil
}

func (r *childRepo) ListByParent(ctx context.Context, parentID string) ([]domain.Child, error) {
	out := filter(r.st.children, func(c domain.Child) bool { return c.ParentID == parentID })
	return byTime(r.st, out, func(c domain.Child) time.Time { return c.CreatedAt }, func(c domain.Child) string { return c.ID }, false), nil
}

type cuidotecaRepo struct{ st *state }

func (r *cuidotecaRepo) Create(ctx context.Context, c domain.Cuidoteca) error {
	r.st.cuidotecas[c.ID] = c
	r.st.touch(c.ID)
	return nil
}

func (r *cuidotecaRepo) Get(ctx context.Context, id string) (*domain.Cuidoteca, error) {
	return get(r.st.cuidotecas, id)
}

func (r *cuidotecaRepo) Update(ctx context.Context, c domain.Cuidoteca) error {
	return update(r.st.cuidotecas, c.ID, c)
}

func (r *cuidotecaRepo) Delete(ctx context.Context, id string) error {
	if err := remove(r.st.cuidotecas, id); err != nil {
		return err
	}
	for eid, e := range r.st.enrollments {
		if e.CuidotecaID == id {
			delete(r.st.enrollments, eid)
		}
	}
	for eid, e := range r.st.cuidadors {
		if e.CuidotecaID == id {
			delete(r.st.cuidadors, eid)
		}
	}
	for nid, n := range r.st.notifications {
		if n.CuidotecaID != nil && *n.CuidotecaID == id {
			n.CuidotecaID = nil
			r.st.notifications[nid] = n
		}
	}
	return nil
}

func (r *cuidotecaRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Cuidoteca, error) {
	out := filter(r.st.cuidotecas, func(c domain.Cuidoteca) bool { return slices.Contains(institutionIDs, c.InstitutionID) })
	return byTime(r.st, out, func(c domain.Cuidoteca) time.Time { return c.CreatedAt }, func(c domain.Cuidoteca) string { return c.ID }, true), nil
}

type enrollmentRepo struct{ st *state }

func (r *enrollmentRepo) Create(ctx context.Context, e domain.Enrollment) error {
	if e.Status.Active() {
		for _, other := range r.st.enrollments {
			if other.ChildID == e.ChildID && other.CuidotecaID == e.CuidotecaID && other.Status.Active() {
				return ports.ErrDuplicate
			}
		}
	}
	r.st.enrollments[e.ID] = e
	r.st.touch(e.ID)
	return nil
}

func (r *enrollmentRepo) Get(ctx context.Context, id string) (*domain.Enrollment, error) {
	return get(r.st.enrollments, id)
}

func (r *enrollmentRepo) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, at time.Time) error {
	e, ok := r.st.enrollments[id]
	if !ok {
		return ports.ErrNotFound
	}
	e.Status, e.UpdatedAt = status, at
	r.st.enrollments[id] = e
	return nil
}

func (r *enrollmentRepo) Delete(ctx context.Context, id string) error {
	return remove(r.st.enrollments, id)
}

func (r *enrollmentRepo) FindActive(ctx context.Context, childID, cuidotecaID string) (*domain.Enrollment, error) {
	for _, e := range r.st.enrollments {
		if e.ChildID == childID && e.CuidotecaID == cuidotecaID && e.Status.Active() {
			return ptr(e), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *enrollmentRepo) ListByParent(ctx context.Context, parentID string) ([]domain.Enrollment, error) {
	out := filter(r.st.enrollments, func(e domain.Enrollment) bool { return e.ParentID == parentID })
	return byTime(r.st, out, func(e domain.Enrollment) time.Time { return e.CreatedAt }, func(e domain.Enrollment) string { return e.ID }, true), nil
}

func (r *enrollmentRepo) ListByCuidoteca(ctx context.Context, cuidotecaID string) ([]domain.Enrollment, error) {
	out := filter(r.st.enrollments, func(e domain.Enrollment) bool { return e.CuidotecaID == cuidotecaID })
	return byTime(r.st, out, func(e domain.Enrollment) time.Time { return e.CreatedAt }, func(e domain.Enrollment) string { return e.ID }, true), nil
}

func (r *enrollmentRepo) ConfirmedParentIDs(ctx context.Context, institutionID string) ([]string, error) {
	var ids []string
	for _, e := range r.st.enrollments {
		c, ok := r.st.cuidotecas[e.CuidotecaID]
		if ok && c.InstitutionID == institutionID && e.Status == domain.EnrollmentConfirmed && !slices.Contains(ids, e.ParentID) {
			ids = append(ids, e.ParentID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

type cuidadorRepo struct{ st *state }

func (r *cuidadorRepo) Create(ctx context.Context, e domain.CuidadorEnrollment) error {
	if e.Status.Active() {
		for _, other := range r.st.cuidadors {
			if other.CuidadorID == e.CuidadorID && other.CuidotecaID == e.CuidotecaID && other.Status.Active() {
				return ports.ErrDuplicate
			}
		}
	}
	r.st.cuidadors[e.ID] = e
	r.st.touch(e.ID)
	return nil
}

func (r *cuidadorRepo) Get(ctx context.Context, id string) (*domain.CuidadorEnrollment, error) {
	return get(r.st.cuidadors, id)
}

func (r *cuidadorRepo) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, at time.Time) error {
	e, ok := r.st.cuidadors[id]
	if !ok {
		return ports.ErrNotFound
	}
	e.Status, e.UpdatedAt = status, at
	r.st.cuidadors[id] = e
	return nil
}

func (r *cuidadorRepo) Delete(ctx context.Context, id string) error {
	return remove(r.st.cuidadors, id)
}

func (r *cuidadorRepo) FindActive(ctx context.Context, cuidadorID, cuidotecaID string) (*domain.CuidadorEnrollment, error) {
	for _, e := range r.st.cuidadors {
		if e.CuidadorID == cuidadorID && e.CuidotecaID == cuidotecaID && e.Status.Active() {
			return ptr(e), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *cuidadorRepo) ListByCuidador(ctx context.Context, cuidadorID string) ([]domain.CuidadorEnrollment, error) {
	out := filter(r.st.cuidadors, func(e domain.CuidadorEnrollment) bool { return e.CuidadorID == cuidadorID })
	return byTime(r.st, out, func(e domain.CuidadorEnrollment) time.Time { return e.CreatedAt }, func(e domain.CuidadorEnrollment) string { return e.ID }, true), nil
}

func (r *cuidadorRepo) ListByCuidoteca(ctx context.Context, cuidotecaID string) ([]domain.CuidadorEnrollment, error) {
	out := filter(r.st.cuidadors, func(e domain.CuidadorEnrollment) bool { return e.CuidotecaID == cuidotecaID })
	return byTime(r.st, out, func(e domain.CuidadorEnrollment) time.Time { return e.CreatedAt }, func(e domain.CuidadorEnrollment) string { return e.ID }, true), nil
}

func (r *cuidadorRepo) ConfirmedCuidadorIDs(ctx context.Context, institutionID string) ([]string, error) {
	var ids []string
	for _, e := range r.st.cuidadors {
		c, ok := r.st.cuidotecas[e.CuidotecaID]
		if ok && c.InstitutionID == institutionID && e.Status == domain.EnrollmentConfirmed && !slices.Contains(ids, e.CuidadorID) {
			ids = append(ids, e.CuidadorID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

type linkRepo struct {
	st  *state
	err error // fails ListMembers
}

func (r *linkRepo) Create(ctx context.Context, l domain.InstitutionLink) error {
	for _, other := range r.st.links {
		if other.UserID == l.UserID && other.InstitutionID == l.InstitutionID {
			return ports.ErrDuplicate
		}
	}
	r.st.links[l.ID] = l
	r.st.touch(l.ID)
	return nil
}

func (r *linkRepo) Find(ctx context.Context, userID, institutionID string) (*domain.InstitutionLink, error) {
	for _, l := range r.st.links {
		if l.UserID == userID && l.InstitutionID == institutionID {
			return ptr(l), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *linkRepo) Delete(ctx context.Context, userID, institutionID string) (bool, error) {
	for id, l := range r.st.links {
		if l.UserID == userID && l.InstitutionID == institutionID {
			delete(r.st.links, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *linkRepo) ListByUser(ctx context.Context, userID string) ([]domain.InstitutionLink, error) {
	out := filter(r.st.links, func(l domain.InstitutionLink) bool { return l.UserID == userID })
	slices.SortFunc(out, func(a, b domain.InstitutionLink) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *linkRepo) ListMembers(ctx context.Context, institutionID string) ([]domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	links := filter(r.st.links, func(l domain.InstitutionLink) bool { return l.InstitutionID == institutionID })
	links = byTime(r.st, links, func(l domain.InstitutionLink) time.Time { return l.CreatedAt }, func(l domain.InstitutionLink) string { return l.ID }, false)
	var out []domain.User
	for _, l := range links {
		if u, ok := r.st.users[l.UserID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type connectionRepo struct{ st *state }

func (r *connectionRepo) Create(ctx context.Context, c domain.Connection) error {
	for _, other := range r.st.connections {
		if other.Involves(c.RequesterID) && other.Involves(c.RecipientID) {
			return ports.ErrDuplicate
		}
	}
	r.st.connections[c.ID] = c
	r.st.touch(c.ID)
	return nil
}

func (r *connectionRepo) Get(ctx context.Context, id string) (*domain.Connection, error) {
	return get(r.st.connections, id)
}

func (r *connectionRepo) FindBetween(ctx context.Context, a, b string) (*domain.Connection, error) {
	for _, c := range r.st.connections {
		if c.Involves(a) && c.Involves(b) {
			return ptr(c), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *connectionRepo) Update(ctx context.Context, c domain.Connection) error {
	return update(r.st.connections, c.ID, c)
}

func (r *connectionRepo) Delete(ctx context.Context, id string) error {
	if err := remove(r.st.connections, id); err != nil {
		return err
	}
	for nid, n := range r.st.notifications {
		if n.ConnectionRequestID != nil && *n.ConnectionRequestID == id {
			delete(r.st.notifications, nid)
		}
	}
	return nil
}

func (r *connectionRepo) ListAccepted(ctx context.Context, userID string) ([]domain.Connection, error) {
	out := filter(r.st.connections, func(c domain.Connection) bool {
		return c.Involves(userID) && c.Status == domain.ConnectionAccepted
	})
	return byTime(r.st, out, func(c domain.Connection) time.Time {
		if c.AcceptedAt != nil {
			return *c.AcceptedAt
		}
		return c.CreatedAt
	}, func(c domain.Connection) string { return c.ID }, true), nil
}

func (r *connectionRepo) ListIncomingPending(ctx context.Context, userID string) ([]domain.Connection, error) {
	out := filter(r.st.connections, func(c domain.Connection) bool {
		return c.RecipientID == userID && c.Status == domain.ConnectionPending
	})
	return byTime(r.st, out, func(c domain.Connection) time.Time { return c.CreatedAt }, func(c domain.Connection) string { return c.ID }, true), nil
}

type notificationRepo struct {
	st        *state
	createErr error
}

func (r *notificationRepo) Create(ctx context.Context, n domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.st.notifications[n.ID] = n
	r.st.touch(n.ID)
	return nil
}

func (r *notificationRepo) Get(ctx context.Context, id string) (*domain.Notification, error) {
	return get(r.st.notifications, id)
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	out := filter(r.st.notifications, func(n domain.Notification) bool { return n.UserID == userID })
	return byTime(r.st, out, func(n domain.Notification) time.Time { return n.CreatedAt }, func(n domain.Notification) string { return n.ID }, true), nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return len(filter(r.st.notifications, func(n domain.Notification) bool { return n.UserID == userID && !n.Read })), nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	n, ok := r.st.notifications[id]
	if !ok {
		return ports.ErrNotFound
	}
	n.Read = true
	r.st.notifications[id] = n
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for id, n := range r.st.notifications {
		if n.UserID == userID {
			n.Read = true
			r.st.notifications[id] = n
		}
	}
	return nil
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	return remove(r.st.notifications, id)
}

func (r *notificationRepo) DeleteByConnectionRequest(ctx context.Context, connectionID string) error {
	for id, n := range r.st.notifications {
		if n.ConnectionRequestID != nil && *n.ConnectionRequestID == connectionID {
			delete(r.st.notifications, id)
		}
	}
	return nil
}

type postRepo struct{ st *state }

func voteKey(postID, userID string) string { return postID + "/" + userID }

func (r *postRepo) Create(ctx context.Context, p domain.Post) error {
	r.st.posts[p.ID] = p
	r.st.touch(p.ID)
	return nil
}

func (r *postRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	return get(r.st.posts, id)
}

func (r *postRepo) Update(ctx context.Context, p domain.Post) error {
	return update(r.st.posts, p.ID, p)
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	if err := remove(r.st.posts, id); err != nil {
		return err
	}
	for k, v := range r.st.votes {
		if v.PostID == id {
			delete(r.st.votes, k)
		}
	}
	return nil
}

func (r *postRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Post, error) {
	out := filter(r.st.posts, func(p domain.Post) bool { return slices.Contains(institutionIDs, p.InstitutionID) })
	out = byTime(r.st, out, func(p domain.Post) time.Time { return p.CreatedAt }, func(p domain.Post) string { return p.ID }, true)
	slices.SortStableFunc(out, func(a, b domain.Post) int {
		switch {
		case a.Pinned == b.Pinned:
			return 0
		case a.Pinned:
			return -1
		default:
			return 1
		}
	})
	return out, nil
}

func (r *postRepo) GetVote(ctx context.Context, postID, userID string) (*domain.PostVote, error) {
	return get(r.st.votes, voteKey(postID, userID))
}

func (r *postRepo) UpsertVote(ctx context.Context, v domain.PostVote) error {
	r.st.votes[voteKey(v.PostID, v.UserID)] = v
	return nil
}

func (r *postRepo) DeleteVote(ctx context.Context, postID, userID string) error {
	delete(r.st.votes, voteKey(postID, userID))
	return nil
}

type eventRepo struct{ st *state }

func (r *eventRepo) Create(ctx context.Context, e domain.Event) error {
	r.st.events[e.ID] = e
	r.st.touch(e.ID)
	return nil
}

func (r *eventRepo) Get(ctx context.Context, id string) (*domain.Event, error) {
	return get(r.st.events, id)
}

func (r *eventRepo) Update(ctx context.Context, e domain.Event) error {
	return update(r.st.events, e.ID, e)
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	if err := remove(r.st.events, id); err != nil {
		return err
	}
	for k, v := range r.st.rsvps {
		if v.EventID == id {
			delete(r.st.rsvps, k)
		}
	}
	for k, p := range r.st.participations {
		if p.EventID == id {
			delete(r.st.participations, k)
		}
	}
	return nil
}

func (r *eventRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Event, error) {
	out := filter(r.st.events, func(e domain.Event) bool { return slices.Contains(institutionIDs, e.InstitutionID) })
	return byTime(r.st, out, func(e domain.Event) time.Time { return e.StartsAt }, func(e domain.Event) string { return e.ID }, false), nil
}

func (r *eventRepo) UpsertRsvp(ctx context.Context, v domain.EventRsvp) (*domain.EventRsvp, error) {
	for id, existing := range r.st.rsvps {
		if existing.EventID == v.EventID && existing.UserID == v.UserID {
			existing.Status, existing.UpdatedAt = v.Status, v.UpdatedAt
			r.st.rsvps[id] = existing
			return ptr(existing), nil
		}
	}
	r.st.rsvps[v.ID] = v
	r.st.touch(v.ID)
	return ptr(v), nil
}

func (r *eventRepo) ListRsvps(ctx context.Context, eventID string) ([]domain.EventRsvp, error) {
	out := filter(r.st.rsvps, func(v domain.EventRsvp) bool { return v.EventID == eventID })
	return byTime(r.st, out, func(v domain.EventRsvp) time.Time { return v.UpdatedAt }, func(v domain.EventRsvp) string { return v.ID }, false), nil
}

func sameChild(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *eventRepo) FindParticipation(ctx context.Context, eventID, userID string, childID *string) (*domain.EventParticipation, error) {
	for _, p := range r.st.participations {
		if p.EventID == eventID && p.UserID == userID && sameChild(p.ChildID, childID) {
			return ptr(p), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *eventRepo) SaveParticipation(ctx context.Context, p domain.EventParticipation) error {
	r.st.participations[p.ID] = p
	r.st.touch(p.ID)
	return nil
}

func (r *eventRepo) ListParticipations(ctx context.Context, eventID string) ([]domain.EventParticipation, error) {
	out := filter(r.st.participations, func(p domain.EventParticipation) bool { return p.EventID == eventID })
	return byTime(r.st, out, func(p domain.EventParticipation) time.Time { return p.CheckedInAt }, func(p domain.EventParticipation) string { return p.ID }, false), nil
}

type messageRepo struct{ st *state }

func (r *messageRepo) Create(ctx context.Context, m domain.Message) error {
	r.st.messages[m.ID] = m
	r.st.touch(m.ID)
	return nil
}

func (r *messageRepo) ListBetween(ctx context.Context, a, b string) ([]domain.Message, error) {
	out := filter(r.st.messages, func(m domain.Message) bool {
		return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
	})
	return byTime(r.st, out, func(m domain.Message) time.Time { return m.CreatedAt }, func(m domain.Message) string { return m.ID }, false), nil
}

func (r *messageRepo) ListForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	out := filter(r.st.messages, func(m domain.Message) bool { return m.SenderID == userID || m.ReceiverID == userID })
	return byTime(r.st, out, func(m domain.Message) time.Time { return m.CreatedAt }, func(m domain.Message) string { return m.ID }, true), nil
}

func (r *messageRepo) MarkReadFrom(ctx context.Context, receiverID, senderID string) error {
	for id, m := range r.st.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID {
			m.Read = true
			r.st.messages[id] = m
		}
	}
	return nil
}

type documentRepo struct{ st *state }

func (r *documentRepo) Create(ctx context.Context, d domain.Document) error {
	r.st.documents[d.ID] = d
	r.st.touch(d.ID)
	return nil
}

func (r *documentRepo) Get(ctx context.Context, id string) (*domain.Document, error) {
	return get(r.st.documents, id)
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	return remove(r.st.documents, id)
}

func (r *documentRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Document, error) {
	out := filter(r.st.documents, func(d domain.Document) bool { return slices.Contains(institutionIDs, d.InstitutionID) })
	return byTime(r.st, out, func(d domain.Document) time.Time { return d.CreatedAt }, func(d domain.Document) string { return d.ID }, true), nil
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	out := filter(r.st.documents, func(d domain.Document) bool { return d.OwnerID == ownerID })
	return byTime(r.st, out, func(d domain.Document) time.Time { return d.CreatedAt }, func(d domain.Document) string { return d.ID }, true), nil
}
