package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

func TestCreatePost_UsesEarliestLinkedInstitution(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	late := w.user("late", domain.RoleInstitution)
	early := w.user("early", domain.RoleInstitution)
	w.store.AddLink(ana.ID, late.ID, at(30))
	w.store.AddLink(ana.ID, early.ID, at(5))

	post, err := w.feed.CreatePost(w.ctx, ana, ports.PostInput{Content: "  Olá comunidade  "})
	require.NoError(t, err)
	assert.Equal(t, early.ID, post.InstitutionID)
	assert.Equal(t, "Olá comunidade", post.Content)
}

func TestCreatePost_StaffPostIntoOwnInstitution(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	coord := w.coordinator("coord", inst.ID)

	post, err := w.feed.CreatePost(w.ctx, coord, ports.PostInput{Content: "Aviso"})
	require.NoError(t, err)
	assert.Equal(t, inst.ID, post.InstitutionID)
}

func TestCreatePost_Rejections(t *testing.T) {
	w := newWorld(t)
	lonely := w.user("zeca", domain.RoleParent)

	_, err := w.feed.CreatePost(w.ctx, lonely, ports.PostInput{Content: "oi"})
	assert.ErrorIs(t, err, domain.ErrNoInstitution)

	_, err = w.feed.CreatePost(w.ctx, lonely, ports.PostInput{Content: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = w.feed.CreatePost(w.ctx, lonely, ports.PostInput{Content: strings.Repeat("a", 5001)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	feed, err := w.feed.ListFeed(w.ctx, lonely)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestVote_ToggleSemantics(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	author := w.user("ana", domain.RoleParent)
	voter := w.user("bia", domain.RoleParent)
	w.link(author, inst)
	w.link(voter, inst)

	post, err := w.feed.CreatePost(w.ctx, author, ports.PostInput{Content: "Bazar sábado"})
	require.NoError(t, err)

	steps := []struct {
		vote     string
		outcome  domain.VoteOutcome
		up, down int
		stored   *domain.VoteType
		notifies bool
	}{
		{"upvote", domain.VoteAdded, 1, 0, ptrVote(domain.Upvote), true},
		{"upvote", domain.VoteRemoved, 0, 0, nil, false},
		{"downvote", domain.VoteAdded, 0, 1, ptrVote(domain.Downvote), true},
		{"upvote", domain.VoteReplaced, 1, 0, ptrVote(domain.Upvote), true},
	}
	expectedNotes := 0
	for i, s := range steps {
		res, err := w.feed.Vote(w.ctx, voter, post.ID, s.vote)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.outcome, res.Outcome, "step %d", i)
		assert.Equal(t, s.up, res.Post.Upvotes, "step %d", i)
		assert.Equal(t, s.down, res.Post.Downvotes, "step %d", i)
		assert.Equal(t, s.stored, res.Vote, "step %d", i)

		stored, ok := w.store.Post(post.ID)
		require.True(t, ok)
		assert.Equal(t, s.up, stored.Upvotes)
		assert.Equal(t, s.down, stored.Downvotes)

		if s.notifies {
			expectedNotes++
		}
		assert.Len(t, w.notificationsOf(author.ID, domain.NotificationVote), expectedNotes, "step %d", i)
	}
}

func ptrVote(v domain.VoteType) *domain.VoteType { return &v }

func TestVote_SelfVoteDoesNotNotify(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	author := w.user("ana", domain.RoleParent)
	w.link(author, inst)

	post, err := w.feed.CreatePost(w.ctx, author, ports.PostInput{Content: "Oi"})
	require.NoError(t, err)

	_, err = w.feed.Vote(w.ctx, author, post.ID, "upvote")
	require.NoError(t, err)
	assert.Empty(t, w.notificationsOf(author.ID, domain.NotificationVote))
}

func TestVote_Rejections(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	rival := w.user("creche", domain.RoleInstitution)
	author := w.user("ana", domain.RoleParent)
	outsider := w.user("zeca", domain.RoleParent)
	w.link(author, inst)

	post, err := w.feed.CreatePost(w.ctx, author, ports.PostInput{Content: "Oi"})
	require.NoError(t, err)

	_, err = w.feed.Vote(w.ctx, outsider, post.ID, "upvote")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = w.feed.Vote(w.ctx, rival, post.ID, "upvote")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = w.feed.Vote(w.ctx, author, post.ID, "meh")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = w.feed.Vote(w.ctx, author, "missing", "upvote")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	res, err := w.feed.Vote(w.ctx, inst, post.ID, "downvote")
	require.NoError(t, err, "staff vote in their own community")
	assert.Equal(t, 1, res.Post.Downvotes)
}

func TestModeration_PinAndFlag(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	author := w.user("ana", domain.RoleParent)
	w.link(author, inst)

	first, err := w.feed.CreatePost(w.ctx, author, ports.PostInput{Content: "primeiro"})
	require.NoError(t, err)
	_, err = w.feed.CreatePost(w.ctx, author, ports.PostInput{Content: "segundo"})
	require.NoError(t, err)

	_, err = w.feed.TogglePin(w.ctx, author, first.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	pinned, err := w.feed.TogglePin(w.ctx, inst, first.ID)
	require.NoError(t, err)
	assert.True(t, pinned.Pinned)

	feed, err := w.feed.ListFeed(w.ctx, author)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, first.ID, feed[0].ID, "pinned posts come first")

	flagged, err := w.feed.ToggleFlag(w.ctx, inst, first.ID)
	require.NoError(t, err)
	assert.True(t, flagged.Flagged)
	assert.Len(t, w.notificationsOf(author.ID, domain.NotificationPostFlagged), 1)

	unflagged, err := w.feed.ToggleFlag(w.ctx, inst, first.ID)
	require.NoError(t, err)
	assert.False(t, unflagged.Flagged)
	assert.Len(t, w.notificationsOf(author.ID, domain.NotificationPostFlagged), 1, "clearing the flag is silent")

	unpinned, err := w.feed.TogglePin(w.ctx, inst, first.ID)
	require.NoError(t, err)
	assert.False(t, unpinned.Pinned)
}

func TestDeletePost(t *testing.T) {
	w := newWorld(t)
	inst := w.user("escola", domain.RoleInstitution)
	author := w.user("ana", domain.RoleParent)
	w.link(author, inst)

	post, err := w.feed.CreatePost(w.ctx, author, ports.PostInput{Content: "Oi"})
	require.NoError(t, err)

	assert.ErrorIs(t, w.feed.DeletePost(w.ctx, inst, post.ID), domain.ErrForbidden)
	require.NoError(t, w.feed.DeletePost(w.ctx, author, post.ID))

	_, ok := w.store.Post(post.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, w.feed.DeletePost(w.ctx, author, post.ID), domain.ErrNotFound)
}
