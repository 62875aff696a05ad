package entity

import (
	"strings"
	"time"

	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/pkg/address"

	"github.com/google/uuid"
)

// Rules for the response/reply tree embedded in a note. Every method mutates the
// note in memory only; persisting the result is the caller's job.

func normalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", apperr.Validation("text must not be empty")
	}
	return trimmed, nil
}

func (n *Note) IsOwner(userId uuid.UUID) bool {
	return n.UserId == userId
}

// CanView reports whether viewerId (nil for anonymous) may read the note.
func (n *Note) CanView(viewerId *uuid.UUID) bool {
	if n.IsPublic {
		return true
	}
	return viewerId != nil && n.IsOwner(*viewerId)
}

func (n *Note) response(responseIndex int) (*Response, error) {
	if !address.InRange(responseIndex, len(n.Responses)) {
		return nil, apperr.InvalidAddress("response index out of range")
	}
	return &n.Responses[responseIndex], nil
}

func (n *Note) reply(responseIndex, replyIndex int) (*Response, *Reply, error) {
	resp, err := n.response(responseIndex)
	if err != nil {
		return nil, nil, err
	}
	if !address.InRange(replyIndex, len(resp.Replies)) {
		return nil, nil, apperr.InvalidAddress("reply index out of range")
	}
	return resp, &resp.Replies[replyIndex], nil
}

// ResponseAt returns a copy of the response at responseIndex.
func (n *Note) ResponseAt(responseIndex int) (Response, error) {
	resp, err := n.response(responseIndex)
	if err != nil {
		return Response{}, err
	}
	return *resp, nil
}

// ReplyAt returns a copy of the reply at (responseIndex, replyIndex).
func (n *Note) ReplyAt(responseIndex, replyIndex int) (Reply, error) {
	_, reply, err := n.reply(responseIndex, replyIndex)
	if err != nil {
		return Reply{}, err
	}
	return *reply, nil
}

// LocateResponse finds a response by id.
func (n *Note) LocateResponse(id uuid.UUID) (int, bool) {
	return address.Locate(n.Responses, address.Key{ID: id.String()})
}

// LocateReply finds a reply by id inside the response at responseIndex.
func (n *Note) LocateReply(responseIndex int, id uuid.UUID) (int, bool) {
	if !address.InRange(responseIndex, len(n.Responses)) {
		return -1, false
	}
	return address.Locate(n.Responses[responseIndex].Replies, address.Key{ID: id.String()})
}

// AddResponse appends a response. Private notes only accept reflections from their owner.
func (n *Note) AddResponse(actor Actor, text string, now time.Time) (int, error) {
	body, err := normalizeText(text)
	if err != nil {
		return -1, err
	}
	if !n.IsPublic && !n.IsOwner(actor.Id) {
		return -1, apperr.Forbidden("only the owner can add reflections to a private note")
	}

	n.Responses = append(n.Responses, Response{
		Id:        uuid.New(),
		Text:      body,
		AuthorId:  actor.Id,
		Reactions: Reactions{Likes: 0, LikedBy: []uuid.UUID{}},
		CreatedAt: now,
		Replies:   []Reply{},
	})
	return len(n.Responses) - 1, nil
}

// AddReply appends a reply under the response at responseIndex. Public notes only.
func (n *Note) AddReply(actor Actor, responseIndex int, text string, now time.Time) (int, error) {
	if !n.IsPublic {
		return -1, apperr.Forbidden("replies are not allowed on private notes")
	}
	resp, err := n.response(responseIndex)
	if err != nil {
		return -1, err
	}
	body, err := normalizeText(text)
	if err != nil {
		return -1, err
	}

	resp.Replies = append(resp.Replies, Reply{
		Id:        uuid.New(),
		Text:      body,
		AuthorId:  actor.Id,
		Reactions: Reactions{Likes: 0, LikedBy: []uuid.UUID{}},
		CreatedAt: now,
	})
	return len(resp.Replies) - 1, nil
}

// ToggleLike flips the actor's like on the note itself.
func (n *Note) ToggleLike(actor Actor) (bool, error) {
	if !n.IsPublic {
		return false, apperr.Forbidden("private notes cannot be liked")
	}
	return n.Reactions.ToggleLike(actor.Id), nil
}

func (n *Note) ToggleResponseLike(actor Actor, responseIndex int) (bool, error) {
	if !n.IsPublic {
		return false, apperr.Forbidden("likes are not allowed on private notes")
	}
	resp, err := n.response(responseIndex)
	if err != nil {
		return false, err
	}
	return resp.ToggleLike(actor.Id), nil
}

func (n *Note) ToggleReplyLike(actor Actor, responseIndex, replyIndex int) (bool, error) {
	if !n.IsPublic {
		return false, apperr.Forbidden("likes are not allowed on private notes")
	}
	_, reply, err := n.reply(responseIndex, replyIndex)
	if err != nil {
		return false, err
	}
	return reply.ToggleLike(actor.Id), nil
}

func checkAuthorWindow(actor Actor, authorId uuid.UUID, createdAt, now time.Time, what string) error {
	if actor.Id != authorId {
		return apperr.Forbidden("only the author can delete this " + what)
	}
	if !WithinEditWindow(createdAt, now) {
		return apperr.TimeWindowExpired(what + " can only be deleted within 10 minutes of posting")
	}
	return nil
}

// DeleteResponse removes the response and every reply under it.
func (n *Note) DeleteResponse(actor Actor, responseIndex int, now time.Time) (Response, error) {
	resp, err := n.response(responseIndex)
	if err != nil {
		return Response{}, err
	}
	if err := checkAuthorWindow(actor, resp.AuthorId, resp.CreatedAt, now, "response"); err != nil {
		return Response{}, err
	}

	removed := *resp
	n.Responses = append(n.Responses[:responseIndex:responseIndex], n.Responses[responseIndex+1:]...)
	return removed, nil
}

func (n *Note) DeleteReply(actor Actor, responseIndex, replyIndex int, now time.Time) (Reply, error) {
	resp, reply, err := n.reply(responseIndex, replyIndex)
	if err != nil {
		return Reply{}, err
	}
	if err := checkAuthorWindow(actor, reply.AuthorId, reply.CreatedAt, now, "reply"); err != nil {
		return Reply{}, err
	}

	removed := *reply
	resp.Replies = append(resp.Replies[:replyIndex:replyIndex], resp.Replies[replyIndex+1:]...)
	return removed, nil
}

// Edit changes title and content. Visibility is fixed at creation and cannot be edited.
func (n *Note) Edit(actor Actor, title, content string, now time.Time) error {
	if !n.IsOwner(actor.Id) {
		return apperr.Forbidden("only the author can edit this note")
	}
	if !WithinEditWindow(n.CreatedAt, now) {
		return apperr.TimeWindowExpired("note can only be edited within 10 minutes of posting")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.Validation("title must not be empty")
	}

	n.Title = title
	n.Content = content
	n.UpdatedAt = &now
	return nil
}

func (n *Note) CheckDeletable(actor Actor, now time.Time) error {
	return checkAuthorWindow(actor, n.UserId, n.CreatedAt, now, "note")
}
