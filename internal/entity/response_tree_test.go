package entity

import (
	"testing"
	"time"

	"vibenotes-be/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0     = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	owner  = Actor{Id: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), DisplayName: "A"}
	reader = Actor{Id: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), DisplayName: "B"}
)

func publicNote() *Note {
	return &Note{Id: uuid.New(), Title: "t", UserId: owner.Id, IsPublic: true, CreatedAt: t0}
}

func assertLikeInvariant(t *testing.T, n *Note) {
	t.Helper()
	assert.Equal(t, len(n.LikedBy), n.Likes)
	for _, resp := range n.Responses {
		assert.Equal(t, len(resp.LikedBy), resp.Likes)
		for _, reply := range resp.Replies {
			assert.Equal(t, len(reply.LikedBy), reply.Likes)
		}
	}
}

func TestAddResponseThenToggleLikeScenario(t *testing.T) {
	n := publicNote()

	idx, err := n.AddResponse(owner, "hello", t0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	require.Len(t, n.Responses, 1)
	assert.Equal(t, owner.Id, n.Responses[0].AuthorId)
	assert.Equal(t, 0, n.Responses[0].Likes)

	liked, err := n.ToggleResponseLike(reader, 0)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, n.Responses[0].Likes)
	assert.Equal(t, []uuid.UUID{reader.Id}, n.Responses[0].LikedBy)

	liked, err = n.ToggleResponseLike(reader, 0)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, n.Responses[0].Likes)
	assert.Empty(t, n.Responses[0].LikedBy)
	assertLikeInvariant(t, n)
}

func TestAddResponseRejectsBlankText(t *testing.T) {
	n := publicNote()

	_, err := n.AddResponse(owner, "   \n", t0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, n.Responses)
}

func TestAddResponseTrimsText(t *testing.T) {
	n := publicNote()

	_, err := n.AddResponse(reader, "  hi there ", t0)
	require.NoError(t, err)
	assert.Equal(t, "hi there", n.Responses[0].Text)
}

func TestPrivateNoteReflectionsOwnerOnly(t *testing.T) {
	n := publicNote()
	n.IsPublic = false

	_, err := n.AddResponse(reader, "intrusion", t0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = n.AddResponse(owner, "reflection", t0)
	assert.NoError(t, err)
}

func TestPrivateNoteRejectsRepliesAndLikes(t *testing.T) {
	n := publicNote()
	n.IsPublic = false
	_, err := n.AddResponse(owner, "reflection", t0)
	require.NoError(t, err)

	_, err = n.AddReply(owner, 0, "reply", t0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = n.ToggleResponseLike(owner, 0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = n.ToggleLike(owner)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestReplyLikesAreIndependent(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)
	_, err := n.AddReply(reader, 0, "first", t0)
	require.NoError(t, err)
	_, err = n.AddReply(owner, 0, "second", t0)
	require.NoError(t, err)

	_, err = n.ToggleReplyLike(owner, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, n.Responses[0].Likes)
	assert.Equal(t, 0, n.Responses[0].Replies[0].Likes)
	assert.Equal(t, 1, n.Responses[0].Replies[1].Likes)
	assertLikeInvariant(t, n)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)
	_, _ = n.AddReply(owner, 0, "reply", t0)
	_, _ = n.ToggleReplyLike(owner, 0, 0)

	before := append([]uuid.UUID(nil), n.Responses[0].Replies[0].LikedBy...)
	_, _ = n.ToggleReplyLike(reader, 0, 0)
	_, _ = n.ToggleReplyLike(reader, 0, 0)

	assert.Equal(t, before, n.Responses[0].Replies[0].LikedBy)
	assert.Equal(t, 1, n.Responses[0].Replies[0].Likes)
}

func TestToggleHealsDriftedCounter(t *testing.T) {
	r := Reactions{Likes: 0, LikedBy: []uuid.UUID{reader.Id}}

	r.ToggleLike(reader.Id)
	assert.Equal(t, 0, r.Likes)
	assert.Empty(t, r.LikedBy)

	r = Reactions{Likes: -3}
	r.ToggleLike(owner.Id)
	assert.Equal(t, 1, r.Likes)
}

func TestDeleteReplyTimeWindow(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)
	_, err := n.AddReply(owner, 0, "reply", t0)
	require.NoError(t, err)

	_, err = n.DeleteReply(owner, 0, 0, t0.Add(11*time.Minute))
	assert.ErrorIs(t, err, apperr.ErrTimeWindowExpired)
	assert.Len(t, n.Responses[0].Replies, 1)

	_, err = n.DeleteReply(owner, 0, 0, t0.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, n.Responses[0].Replies)
}

func TestDeleteBoundaryIsInclusive(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)

	_, err := n.DeleteResponse(owner, 0, t0.Add(EditWindow))
	assert.NoError(t, err)
}

func TestDeleteJustPastBoundaryExpires(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)

	_, err := n.DeleteResponse(owner, 0, t0.Add(EditWindow+time.Second))
	assert.ErrorIs(t, err, apperr.ErrTimeWindowExpired)
}

func TestDeleteByNonAuthorIsForbidden(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)
	_, _ = n.AddReply(owner, 0, "reply", t0)

	_, err := n.DeleteResponse(reader, 0, t0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = n.DeleteReply(reader, 0, 0, t0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestOwnershipCheckedBeforeWindow(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)

	_, err := n.DeleteResponse(reader, 0, t0.Add(time.Hour))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeleteResponseDropsRepliesAndShifts(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "first", t0)
	_, _ = n.AddReply(reader, 0, "child", t0)
	_, _ = n.AddResponse(reader, "second", t0)
	replyId := n.Responses[0].Replies[0].Id
	secondId := n.Responses[1].Id

	removed, err := n.DeleteResponse(owner, 0, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, removed.Replies, 1)

	require.Len(t, n.Responses, 1)
	assert.Equal(t, secondId, n.Responses[0].Id)

	_, found := n.LocateReply(0, replyId)
	assert.False(t, found)
}

func TestInvalidAddresses(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "r", t0)

	_, err := n.ToggleResponseLike(reader, 1)
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)

	_, err = n.ToggleReplyLike(reader, 0, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)

	_, err = n.AddReply(reader, -1, "x", t0)
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)

	_, err = n.DeleteReply(owner, 5, 0, t0)
	assert.ErrorIs(t, err, apperr.ErrInvalidAddress)
}

func TestLocateResponseAfterShift(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(owner, "a", t0)
	_, _ = n.AddResponse(owner, "b", t0)
	_, _ = n.AddResponse(reader, "x", t0)
	x := n.Responses[2].Id

	_, err := n.DeleteResponse(owner, 0, t0)
	require.NoError(t, err)

	idx, ok := n.LocateResponse(x)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestEditNote(t *testing.T) {
	n := publicNote()

	err := n.Edit(reader, "x", "y", t0)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = n.Edit(owner, "x", "y", t0.Add(11*time.Minute))
	assert.ErrorIs(t, err, apperr.ErrTimeWindowExpired)

	err = n.Edit(owner, " ", "y", t0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, n.Edit(owner, "new", "body", t0.Add(time.Minute)))
	assert.Equal(t, "new", n.Title)
	assert.True(t, n.IsPublic)
	require.NotNil(t, n.UpdatedAt)
}

func TestCanView(t *testing.T) {
	n := publicNote()
	n.IsPublic = false

	assert.False(t, n.CanView(nil))
	assert.False(t, n.CanView(&reader.Id))
	assert.True(t, n.CanView(&owner.Id))
}

func TestAuthorIdsDistinctOwnerFirst(t *testing.T) {
	n := publicNote()
	_, _ = n.AddResponse(reader, "r", t0)
	_, _ = n.AddReply(owner, 0, "x", t0)
	_, _ = n.AddReply(reader, 0, "y", t0)

	assert.Equal(t, []uuid.UUID{owner.Id, reader.Id}, n.AuthorIds())
}
