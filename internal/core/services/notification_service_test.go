package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/services"
)

func TestNotifications_ReadAndDelete(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)
	caio := w.user("caio", domain.RoleParent)

	_, err := w.connections.RequestConnection(w.ctx, bia, ana.ID)
	require.NoError(t, err)
	_, err = w.connections.RequestConnection(w.ctx, caio, ana.ID)
	require.NoError(t, err)

	list, err := w.notifications.List(w.ctx, ana)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Contains(t, list[0].Message, "caio", "newest first")

	n, err := w.notifications.UnreadCount(w.ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, w.notifications.MarkAsRead(w.ctx, ana, list[0].ID))
	n, err = w.notifications.UnreadCount(w.ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, w.notifications.Delete(w.ctx, bia, list[1].ID), domain.ErrForbidden)
	require.NoError(t, w.notifications.Delete(w.ctx, ana, list[1].ID))
	assert.ErrorIs(t, w.notifications.Delete(w.ctx, ana, list[1].ID), domain.ErrNotFound)

	require.NoError(t, w.notifications.MarkAllAsRead(w.ctx, ana))
	n, err = w.notifications.UnreadCount(w.ctx, ana)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// MarkAsRead does not check the recipient; any authenticated caller can flip the flag.
func TestMarkAsRead_AnyCallerCanMarkExistingNotification(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleParent)
	caio := w.user("caio", domain.RoleParent)

	_, err := w.connections.RequestConnection(w.ctx, bia, ana.ID)
	require.NoError(t, err)
	note := w.store.NotificationsFor(ana.ID)[0]

	require.NoError(t, w.notifications.MarkAsRead(w.ctx, caio, note.ID))
	assert.True(t, w.store.NotificationsFor(ana.ID)[0].Read)

	assert.ErrorIs(t, w.notifications.MarkAsRead(w.ctx, caio, "missing"), domain.ErrNotFound)
}

func TestNotifier_FanOutSkipsCreator(t *testing.T) {
	w := newWorld(t)
	notifier := services.NewNotifier(nil)
	recipients := []domain.User{{ID: "inst"}, {ID: "ana"}, {ID: "bia"}}

	var stored int
	err := w.store.Tx(w.ctx, func(_ context.Context, r ports.Repositories) error {
		stored = notifier.FanOut(w.ctx, r.Notifications(), recipients, "inst", func(u domain.User) domain.Notification {
			return domain.Notification{Message: "olá " + u.ID}
		})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	all := w.store.AllNotifications()
	require.Len(t, all, 2)
	for _, n := range all {
		assert.Equal(t, domain.NotificationGeneral, n.Type, "type defaults to general")
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.CreatedAt.IsZero())
		assert.Equal(t, "olá "+n.UserID, n.Message)
	}
}
