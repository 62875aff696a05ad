package client

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/pkg/address"

	"github.com/google/uuid"
)

// ErrUnresolved is returned when a target cannot be mapped onto the current
// snapshot at all, so no request is sent.
var ErrUnresolved = errors.New("client: target is not present in the current snapshot")

// API is the subset of Client a Thread needs.
type API interface {
	GetNote(ctx context.Context, noteID string) (*dto.NoteResponse, error)
	AddResponse(ctx context.Context, noteID string, req dto.AddResponseRequest) (*dto.AddResponseResult, error)
	PatchResponse(ctx context.Context, noteID string, req dto.PatchResponseRequest) (*dto.PatchResponseResult, error)
}

// Thread tracks one note's responses for one viewer.
//
// The snapshot is only ever replaced wholesale by what the server returns.
// Optimistic changes touch the view alone and are undone if the call fails.
type Thread struct {
	api          API
	viewerID     string
	checkVersion bool
	now          func() time.Time

	// op serializes mutations so a rollback never discards another call's change.
	op sync.Mutex

	mu       sync.RWMutex
	snapshot *dto.NoteResponse
	view     []Entry
}

type ThreadOption func(*Thread)

// WithVersionCheck sends the snapshot version with every mutation so the
// server rejects it with Conflict when the note moved on in between.
func WithVersionCheck() ThreadOption {
	return func(t *Thread) { t.checkVersion = true }
}

func NewThread(api API, viewerID string, note *dto.NoteResponse, opts ...ThreadOption) *Thread {
	t := &Thread{
		api:      api,
		viewerID: viewerID,
		now:      time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	t.replace(note)
	return t
}

// OpenThread fetches the note and builds a Thread over it.
func OpenThread(ctx context.Context, api API, noteID, viewerID string, opts ...ThreadOption) (*Thread, error) {
	note, err := api.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return NewThread(api, viewerID, note, opts...), nil
}

// Note returns the last server snapshot. Callers must not modify it.
func (t *Thread) Note() *dto.NoteResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

// View returns the responses in display order, including pending optimistic changes.
func (t *Thread) View() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.view)
}

func (t *Thread) Refresh(ctx context.Context) error {
	t.op.Lock()
	defer t.op.Unlock()

	note, err := t.api.GetNote(ctx, t.Note().Id)
	if err != nil {
		return err
	}
	t.replace(note)
	return nil
}

func (t *Thread) AddResponse(ctx context.Context, text string) (*dto.AddResponseResult, error) {
	var res *dto.AddResponseResult
	err := t.mutate(ctx,
		func(snap *dto.NoteResponse, pending []dto.ResponseItem) ([]dto.ResponseItem, error) {
			return append(pending, dto.ResponseItem{
				Text:      text,
				Author:    dto.UnresolvedAuthor(t.viewerID),
				LikedBy:   []string{},
				CreatedAt: t.now().UTC().Format(time.RFC3339Nano),
				Replies:   []dto.ReplyItem{},
			}), nil
		},
		func(snap *dto.NoteResponse) (*dto.NoteResponse, error) {
			req := dto.AddResponseRequest{Text: text, Version: t.version(snap)}
			out, err := t.api.AddResponse(ctx, snap.Id, req)
			if err != nil {
				return nil, err
			}
			res = out
			return out.Note, nil
		},
	)
	return res, err
}

func (t *Thread) AddReply(ctx context.Context, parent Ref, text string) (*dto.PatchResponseResult, error) {
	return t.patchResponse(ctx, dto.ActionAddReply, parent,
		func(item *dto.ResponseItem) {
			item.Replies = append(item.Replies, dto.ReplyItem{
				Text:      text,
				Author:    dto.UnresolvedAuthor(t.viewerID),
				LikedBy:   []string{},
				CreatedAt: t.now().UTC().Format(time.RFC3339Nano),
			})
		},
		func(req *dto.PatchResponseRequest) { req.ReplyText = text },
	)
}

func (t *Thread) LikeResponse(ctx context.Context, target Ref) (*dto.PatchResponseResult, error) {
	return t.patchResponse(ctx, dto.ActionLikeResponse, target,
		func(item *dto.ResponseItem) {
			item.LikedBy = toggle(item.LikedBy, t.viewerID)
			item.Likes = len(item.LikedBy)
		},
		nil,
	)
}

func (t *Thread) DeleteResponse(ctx context.Context, target Ref) (*dto.PatchResponseResult, error) {
	var res *dto.PatchResponseResult
	err := t.mutate(ctx,
		func(snap *dto.NoteResponse, pending []dto.ResponseItem) ([]dto.ResponseItem, error) {
			i, err := resolveResponse(snap, target)
			if err != nil {
				return nil, err
			}
			return slices.Delete(pending, i, i+1), nil
		},
		func(snap *dto.NoteResponse) (*dto.NoteResponse, error) {
			i, _ := resolveResponse(snap, target)
			out, err := t.api.PatchResponse(ctx, snap.Id, t.responseRequest(dto.ActionDeleteResponse, snap, target.Key, i))
			if err != nil {
				return nil, err
			}
			res = out
			return out.Note, nil
		},
	)
	return res, err
}

func (t *Thread) LikeReply(ctx context.Context, parent, reply Ref) (*dto.PatchResponseResult, error) {
	return t.patchReply(ctx, dto.ActionLikeReply, parent, reply,
		func(replies []dto.ReplyItem, j int) []dto.ReplyItem {
			replies[j].LikedBy = toggle(replies[j].LikedBy, t.viewerID)
			replies[j].Likes = len(replies[j].LikedBy)
			return replies
		},
	)
}

func (t *Thread) DeleteReply(ctx context.Context, parent, reply Ref) (*dto.PatchResponseResult, error) {
	return t.patchReply(ctx, dto.ActionDeleteReply, parent, reply,
		func(replies []dto.ReplyItem, j int) []dto.ReplyItem {
			return slices.Delete(replies, j, j+1)
		},
	)
}

// patchResponse runs an action that targets a response.
func (t *Thread) patchResponse(
	ctx context.Context,
	action string,
	target Ref,
	optimistic func(item *dto.ResponseItem),
	decorate func(req *dto.PatchResponseRequest),
) (*dto.PatchResponseResult, error) {
	var res *dto.PatchResponseResult
	err := t.mutate(ctx,
		func(snap *dto.NoteResponse, pending []dto.ResponseItem) ([]dto.ResponseItem, error) {
			i, err := resolveResponse(snap, target)
			if err != nil {
				return nil, err
			}
			optimistic(&pending[i])
			return pending, nil
		},
		func(snap *dto.NoteResponse) (*dto.NoteResponse, error) {
			i, _ := resolveResponse(snap, target)
			req := t.responseRequest(action, snap, target.Key, i)
			if decorate != nil {
				decorate(&req)
			}
			out, err := t.api.PatchResponse(ctx, snap.Id, req)
			if err != nil {
				return nil, err
			}
			res = out
			return out.Note, nil
		},
	)
	return res, err
}

// patchReply runs an action that targets a reply inside a response.
func (t *Thread) patchReply(
	ctx context.Context,
	action string,
	parent, reply Ref,
	optimistic func(replies []dto.ReplyItem, j int) []dto.ReplyItem,
) (*dto.PatchResponseResult, error) {
	var res *dto.PatchResponseResult
	err := t.mutate(ctx,
		func(snap *dto.NoteResponse, pending []dto.ResponseItem) ([]dto.ResponseItem, error) {
			i, j, err := resolveReply(snap, parent, reply)
			if err != nil {
				return nil, err
			}
			pending[i].Replies = optimistic(pending[i].Replies, j)
			return pending, nil
		},
		func(snap *dto.NoteResponse) (*dto.NoteResponse, error) {
			i, j, _ := resolveReply(snap, parent, reply)
			req := t.responseRequest(action, snap, parent.Key, i)
			req.ReplyIndex = &j
			if id, err := uuid.Parse(reply.Key.ID); err == nil {
				req.ReplyId = &id
			}
			out, err := t.api.PatchResponse(ctx, snap.Id, req)
			if err != nil {
				return nil, err
			}
			res = out
			return out.Note, nil
		},
	)
	return res, err
}

// mutate applies optimistic to a private copy of the snapshot's responses,
// publishes the reordered result as the view, then performs call. On failure
// the previous view is restored; on success the returned note becomes the
// snapshot.
func (t *Thread) mutate(
	ctx context.Context,
	optimistic func(snap *dto.NoteResponse, pending []dto.ResponseItem) ([]dto.ResponseItem, error),
	call func(snap *dto.NoteResponse) (*dto.NoteResponse, error),
) error {
	t.op.Lock()
	defer t.op.Unlock()

	t.mu.Lock()
	snap := t.snapshot
	previous := t.view
	pending, err := optimistic(snap, cloneResponses(snap.Responses))
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.view = OrderForViewer(pending, t.viewerID)
	t.mu.Unlock()

	note, err := call(snap)
	if err == nil && note == nil {
		note, err = t.api.GetNote(ctx, snap.Id)
	}
	if err != nil {
		t.mu.Lock()
		t.view = previous
		t.mu.Unlock()
		return err
	}

	t.replace(note)
	return nil
}

func (t *Thread) replace(note *dto.NoteResponse) {
	if note == nil {
		note = &dto.NoteResponse{}
	}
	view := OrderForViewer(note.Responses, t.viewerID)

	t.mu.Lock()
	t.snapshot = note
	t.view = view
	t.mu.Unlock()
}

func (t *Thread) version(snap *dto.NoteResponse) *int64 {
	if !t.checkVersion {
		return nil
	}
	v := snap.Version
	return &v
}

func (t *Thread) responseRequest(action string, snap *dto.NoteResponse, key address.Key, index int) dto.PatchResponseRequest {
	req := dto.PatchResponseRequest{
		Action:        action,
		ResponseIndex: &index,
		Version:       t.version(snap),
	}
	if id, err := uuid.Parse(key.ID); err == nil {
		req.ResponseId = &id
	}
	return req
}

type responseNode struct {
	key     address.Key
	replies []dto.ReplyItem
}

func (n responseNode) AddressKey() address.Key { return n.key }

type replyNode address.Key

func (n replyNode) AddressKey() address.Key { return address.Key(n) }

func responseNodes(responses []dto.ResponseItem) []responseNode {
	nodes := make([]responseNode, len(responses))
	for i, r := range responses {
		nodes[i] = responseNode{key: ResponseKey(r), replies: r.Replies}
	}
	return nodes
}

func replyNodes(n responseNode) []replyNode {
	nodes := make([]replyNode, len(n.replies))
	for i, r := range n.replies {
		nodes[i] = replyNode(ReplyKey(r))
	}
	return nodes
}

func resolveResponse(snap *dto.NoteResponse, target Ref) (int, error) {
	res := address.Resolve(responseNodes(snap.Responses), target.Key, target.Index)
	if !address.InRange(res.Index, len(snap.Responses)) {
		return -1, ErrUnresolved
	}
	return res.Index, nil
}

func resolveReply(snap *dto.NoteResponse, parent, reply Ref) (int, int, error) {
	res := address.ResolveNested(
		responseNodes(snap.Responses), parent.Key, parent.Index,
		replyNodes, reply.Key, reply.Index,
	)
	if !res.Usable() || !address.InRange(res.Child.Index, len(snap.Responses[res.Parent.Index].Replies)) {
		return -1, -1, ErrUnresolved
	}
	return res.Parent.Index, res.Child.Index, nil
}

func toggle(likedBy []string, userID string) []string {
	if i := slices.Index(likedBy, userID); i >= 0 {
		return slices.Delete(likedBy, i, i+1)
	}
	return append(likedBy, userID)
}

// cloneResponses copies everything an optimistic change may touch so the
// snapshot's slices are never written through.
func cloneResponses(responses []dto.ResponseItem) []dto.ResponseItem {
	out := make([]dto.ResponseItem, len(responses))
	for i, r := range responses {
		r.LikedBy = slices.Clone(r.LikedBy)
		replies := make([]dto.ReplyItem, len(r.Replies))
		for j, reply := range r.Replies {
			reply.LikedBy = slices.Clone(reply.LikedBy)
			replies[j] = reply
		}
		r.Replies = replies
		out[i] = r
	}
	return out
}
