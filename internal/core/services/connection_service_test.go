package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
)

func TestRequestConnection_NotifiesRecipient(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleCuidador)

	conn, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPending, conn.Status)
	assert.Nil(t, conn.AcceptedAt)

	notes := w.notificationsOf(bia.ID, domain.NotificationConnectionRequest)
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].ConnectionRequestID)
	assert.Equal(t, conn.ID, *notes[0].ConnectionRequestID)
	assert.Contains(t, notes[0].Message, "ana")

	state, edge, err := w.connections.ConnectionStatus(w.ctx, ana, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingOutgoing, state)
	require.NotNil(t, edge)

	state, _, err = w.connections.ConnectionStatus(w.ctx, bia, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingIncoming, state)
}

func TestRequestConnection_Rejections(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	inst := w.user("escola", domain.RoleInstitution)
	coord := w.coordinator("coord", inst.ID)

	tests := []struct {
		name      string
		actor     domain.Actor
		recipient string
		want      error
	}{
		{"self_connection", ana, ana.ID, domain.ErrInvalidPair},
		{"parent_to_institution", ana, inst.ID, domain.ErrInvalidPair},
		{"coordinator_to_parent", coord, ana.ID, domain.ErrInvalidPair},
		{"unknown_recipient", ana, "ghost", domain.ErrNotFound},
		{"unknown_requester", domain.Actor{ID: "ghost", Role: domain.RoleParent}, ana.ID, domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.connections.RequestConnection(w.ctx, tt.actor, tt.recipient)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, w.store.Connections())
	assert.Empty(t, w.store.AllNotifications())
}

func TestRequestConnection_AtMostOneEdgePerPair(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)

	_, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)

	_, err = w.connections.RequestConnection(w.ctx, ana, bia.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = w.connections.RequestConnection(w.ctx, bia, ana.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists, "reverse direction counts as the same pair")

	assert.Len(t, w.store.Connections(), 1)
	assert.Len(t, w.notificationsOf(bia.ID, domain.NotificationConnectionRequest), 1)
	assert.Empty(t, w.notificationsOf(ana.ID, domain.NotificationConnectionRequest))
}

func TestAcceptConnection(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleCuidador)

	conn, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)

	_, err = w.connections.AcceptConnection(w.ctx, ana, conn.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "only the recipient may accept")

	accepted, err := w.connections.AcceptConnection(w.ctx, bia, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	assert.Empty(t, w.notificationsOf(bia.ID, domain.NotificationConnectionRequest), "request notification is consumed")
	general := w.notificationsOf(ana.ID, domain.NotificationGeneral)
	require.Len(t, general, 1)
	assert.Contains(t, general[0].Message, "bia")

	_, err = w.connections.AcceptConnection(w.ctx, bia, conn.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	for _, actor := range []domain.Actor{ana, bia} {
		state, _, err := w.connections.ConnectionStatus(w.ctx, actor, accepted.Counterpart(actor.ID))
		require.NoError(t, err)
		assert.Equal(t, domain.StateConnected, state)

		list, err := w.connections.ListConnections(w.ctx, actor)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, accepted.Counterpart(actor.ID), list[0].User.ID)
	}
}

func TestDeclineThenRequestAgain(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)

	conn, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)

	pending, err := w.connections.ListPendingRequests(w.ctx, bia)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ana.ID, pending[0].User.ID)

	declined, err := w.connections.DeclineConnection(w.ctx, bia, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionDeclined, declined.Status)
	assert.Empty(t, w.store.NotificationsFor(bia.ID))

	state, _, err := w.connections.ConnectionStatus(w.ctx, ana, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateNotConnected, state)

	again, err := w.connections.RequestConnection(w.ctx, bia, ana.ID)
	require.NoError(t, err)
	assert.NotEqual(t, conn.ID, again.ID)

	conns := w.store.Connections()
	require.Len(t, conns, 1, "the declined edge is replaced")
	assert.Equal(t, domain.ConnectionPending, conns[0].Status)
	assert.Equal(t, bia.ID, conns[0].RequesterID)
}

func TestRemoveConnection(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)
	caio := w.user("caio", domain.RoleParent)

	conn, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)

	err = w.connections.RemoveConnection(w.ctx, caio, conn.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, w.connections.RemoveConnection(w.ctx, ana, conn.ID), "requester can cancel a pending request")
	assert.Empty(t, w.store.Connections())
	assert.Empty(t, w.store.NotificationsFor(bia.ID))

	err = w.connections.RemoveConnection(w.ctx, ana, conn.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConnectInstitution(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	inst := w.user("escola", domain.RoleInstitution)
	other := w.user("creche", domain.RoleInstitution)
	bia := w.user("bia", domain.RoleParent)

	link, err := w.connections.ConnectInstitution(w.ctx, ana, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, inst.ID, link.InstitutionID)

	_, err = w.connections.ConnectInstitution(w.ctx, ana, inst.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyConnected)

	_, err = w.connections.ConnectInstitution(w.ctx, other, inst.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.connections.ConnectInstitution(w.ctx, ana, bia.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "target must be an institution")

	members, err := w.connections.ListMembers(w.ctx, inst)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, ana.ID, members[0].ID)

	_, err = w.connections.ListMembers(w.ctx, ana)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDisconnectInstitution_Idempotent(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	inst := w.user("escola", domain.RoleInstitution)
	w.link(ana, inst)

	require.NoError(t, w.connections.DisconnectInstitution(w.ctx, ana, inst.ID))
	require.NoError(t, w.connections.DisconnectInstitution(w.ctx, ana, inst.ID))
	require.NoError(t, w.connections.DisconnectInstitution(w.ctx, ana, "never-linked"))

	list, err := w.connections.ListInstitutions(w.ctx, ana)
	require.NoError(t, err)
	assert.Empty(t, list)

	w.link(ana, inst)
	list, err = w.connections.ListInstitutions(w.ctx, ana)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRemoveMember(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	inst := w.user("escola", domain.RoleInstitution)
	coord := w.coordinator("coord", inst.ID)
	w.link(ana, inst)

	err := w.connections.RemoveMember(w.ctx, ana, ana.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, w.connections.RemoveMember(w.ctx, coord, ana.ID))
	require.NoError(t, w.connections.RemoveMember(w.ctx, coord, ana.ID))

	members, err := w.connections.ListMembers(w.ctx, inst)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestListInstitutions_OldestLinkFirst(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	late := w.user("late", domain.RoleInstitution)
	early := w.user("early", domain.RoleInstitution)

	w.store.AddLink(ana.ID, late.ID, at(10))
	w.store.AddLink(ana.ID, early.ID, at(0))

	list, err := w.connections.ListInstitutions(w.ctx, ana)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)
}

func TestRequestConnection_SucceedsWhenNotificationInsertFails(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)
	w.store.NotificationError = errors.New("disk full")

	conn, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPending, conn.Status)
	assert.Len(t, w.store.Connections(), 1)
	assert.Empty(t, w.store.AllNotifications())
}
