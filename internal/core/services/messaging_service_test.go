package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

func connect(t *testing.T, w *world, a, b domain.Actor) {
	t.Helper()
	conn, err := w.connections.RequestConnection(w.ctx, a, b.ID)
	require.NoError(t, err)
	_, err = w.connections.AcceptConnection(w.ctx, b, conn.ID)
	require.NoError(t, err)
}

func TestSend_PeersNeedAcceptedConnection(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleCuidador)

	_, err := w.messaging.Send(w.ctx, ana, bia.ID, "oi")
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	conn, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)
	_, err = w.messaging.Send(w.ctx, ana, bia.ID, "oi")
	assert.ErrorIs(t, err, domain.ErrNotConnected, "pending is not enough")

	_, err = w.connections.AcceptConnection(w.ctx, bia, conn.ID)
	require.NoError(t, err)

	msg, err := w.messaging.Send(w.ctx, ana, bia.ID, "  oi  ")
	require.NoError(t, err)
	assert.Equal(t, "oi", msg.Content)
	assert.False(t, msg.Read)
	assert.Len(t, w.store.Messages(), 1)
}

func TestSend_Validation(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)
	connect(t, w, ana, bia)

	_, err := w.messaging.Send(w.ctx, ana, bia.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = w.messaging.Send(w.ctx, ana, bia.ID, strings.Repeat("x", 4001))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = w.messaging.Send(w.ctx, ana, ana.ID, "eu")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = w.messaging.Send(w.ctx, ana, "ghost", "oi")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, w.store.Messages())
}

func TestSend_InstitutionAndMembers(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	coord := w.coordinator("coord", inst.ID)
	rival := w.user("creche", domain.RoleInstitution)
	ana := w.user("ana", domain.RoleParent)
	zeca := w.user("zeca", domain.RoleParent)
	w.link(ana, inst)

	tests := []struct {
		name string
		from domain.Actor
		to   domain.Actor
		ok   bool
	}{
		{"institution_to_member", inst, ana, true},
		{"member_to_institution", ana, inst, true},
		{"coordinator_to_member", coord, ana, true},
		{"institution_to_own_coordinator", inst, coord, true},
		{"institution_to_outsider", inst, zeca, false},
		{"outsider_to_institution", zeca, inst, false},
		{"across_institutions", rival, inst, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.messaging.Send(w.ctx, tt.from, tt.to.ID, "olá")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrNotConnected)
			}
		})
	}
}

func TestConversation_MarksReceivedMessagesRead(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)
	caio := w.user("caio", domain.RoleParent)
	connect(t, w, ana, bia)
	connect(t, w, ana, caio)

	for _, text := range []string{"um", "dois"} {
		_, err := w.messaging.Send(w.ctx, bia, ana.ID, text)
		require.NoError(t, err)
	}
	_, err := w.messaging.Send(w.ctx, ana, bia.ID, "três")
	require.NoError(t, err)
	_, err = w.messaging.Send(w.ctx, caio, ana.ID, "oi ana")
	require.NoError(t, err)

	convs, err := w.messaging.ListConversations(w.ctx, ana)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, caio.ID, convs[0].CounterpartID, "most recent conversation first")
	assert.Equal(t, 1, convs[0].Unread)
	assert.Equal(t, bia.ID, convs[1].CounterpartID)
	assert.Equal(t, "três", convs[1].LastMessage)
	assert.Equal(t, 2, convs[1].Unread)
	assert.Equal(t, "bia", convs[1].CounterpartName)

	thread, err := w.messaging.GetConversation(w.ctx, ana, bia.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "um", thread[0].Content, "oldest first")
	for _, m := range thread {
		if m.ReceiverID == ana.ID {
			assert.True(t, m.Read)
		}
	}

	convs, err = w.messaging.ListConversations(w.ctx, ana)
	require.NoError(t, err)
	assert.Zero(t, convs[1].Unread)
	assert.Equal(t, 1, convs[0].Unread, "other threads are untouched")

	// bia has not opened the thread yet
	biaThread, err := w.messaging.ListConversations(w.ctx, bia)
	require.NoError(t, err)
	require.Len(t, biaThread, 1)
	assert.Equal(t, 1, biaThread[0].Unread)

	empty, err := w.messaging.ListConversations(w.ctx, w.user("solo", domain.RoleParent))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBulkSend_ApprovedParents(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	approved := w.user("ana", domain.RoleParent)
	pending := w.user("bia", domain.RoleParent)
	linkedOnly := w.user("caio", domain.RoleParent)
	w.link(approved, inst)
	w.link(linkedOnly, inst)

	c := w.cuidoteca(inst, "Cantinho", 1, 6)
	for _, p := range []domain.Actor{approved, pending} {
		kid := w.child(p, "kid-"+p.ID, 3)
		e, err := w.enrollments.Enroll(w.ctx, p, ports.EnrollInput{CuidotecaID: c.ID, ChildID: kid.ID})
		require.NoError(t, err)
		if p == approved {
			_, err = w.enrollments.Approve(w.ctx, inst, e.ID)
			require.NoError(t, err)
		}
	}
	// a second confirmed child must not duplicate the parent
	kid := w.child(approved, "segundo", 4)
	e, err := w.enrollments.Enroll(w.ctx, approved, ports.EnrollInput{CuidotecaID: c.ID, ChildID: kid.ID})
	require.NoError(t, err)
	_, err = w.enrollments.Approve(w.ctx, inst, e.ID)
	require.NoError(t, err)

	res, err := w.messaging.BulkSend(w.ctx, inst, "approved-parents", "Reunião sexta")
	require.NoError(t, err)
	assert.Equal(t, domain.GroupApprovedParents, res.Group)
	assert.Equal(t, 1, res.Recipients)

	msgs := w.store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, approved.ID, msgs[0].ReceiverID)
	assert.Equal(t, inst.ID, msgs[0].SenderID)

	res, err = w.messaging.BulkSend(w.ctx, inst, "parents", "Festa junina")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Recipients, "linked members by role")
}

func TestBulkSend_Rejections(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	ana := w.user("ana", domain.RoleParent)
	w.link(ana, inst)

	_, err := w.messaging.BulkSend(w.ctx, inst, "approved-all", "oi")
	assert.ErrorIs(t, err, domain.ErrEmptyGroup)

	_, err = w.messaging.BulkSend(w.ctx, inst, "cuidadores", "oi")
	assert.ErrorIs(t, err, domain.ErrEmptyGroup)

	_, err = w.messaging.BulkSend(w.ctx, ana, "parents", "oi")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.messaging.BulkSend(w.ctx, inst, "everyone", "oi")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = w.messaging.BulkSend(w.ctx, inst, "parents", " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, w.store.Messages())
}
