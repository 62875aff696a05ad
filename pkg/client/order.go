package client

import (
	"slices"
	"time"

	"vibenotes-be/internal/dto"
	"vibenotes-be/pkg/address"
)

// Ref points at a response or reply: its stable key plus the position it had
// in the snapshot it was read from.
type Ref struct {
	Key   address.Key
	Index int
}

// Entry is one response as displayed, with the Ref needed to act on it.
type Entry struct {
	Ref      Ref
	Response dto.ResponseItem
}

func (e Entry) AddressKey() address.Key {
	return e.Ref.Key
}

// ReplyRef builds the Ref of the reply at index within its response.
func (e Entry) ReplyRef(index int) Ref {
	if !address.InRange(index, len(e.Response.Replies)) {
		return Ref{Index: index}
	}
	return Ref{Key: ReplyKey(e.Response.Replies[index]), Index: index}
}

func ResponseKey(r dto.ResponseItem) address.Key {
	return address.Key{ID: r.Id, AuthorID: r.Author.Id, CreatedAt: parseTime(r.CreatedAt)}
}

func ReplyKey(r dto.ReplyItem) address.Key {
	return address.Key{ID: r.Id, AuthorID: r.Author.Id, CreatedAt: parseTime(r.CreatedAt)}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// OrderForViewer puts the viewer's newest response first and every other
// response in ascending createdAt. Each Entry keeps its position in responses.
func OrderForViewer(responses []dto.ResponseItem, viewerID string) []Entry {
	entries := make([]Entry, len(responses))
	newest := -1
	for i, r := range responses {
		entries[i] = Entry{Ref: Ref{Key: ResponseKey(r), Index: i}, Response: r}
		if viewerID == "" || r.Author.Id != viewerID {
			continue
		}
		if newest < 0 || !entries[i].Ref.Key.CreatedAt.Before(entries[newest].Ref.Key.CreatedAt) {
			newest = i
		}
	}

	var first []Entry
	rest := entries
	if newest >= 0 {
		first = []Entry{entries[newest]}
		rest = slices.Delete(slices.Clone(entries), newest, newest+1)
	}

	slices.SortStableFunc(rest, func(a, b Entry) int {
		return a.Ref.Key.CreatedAt.Compare(b.Ref.Key.CreatedAt)
	})

	return append(first, rest...)
}
