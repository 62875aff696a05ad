package entity

import "github.com/google/uuid"

// Reactions is the like counter shared by notes, responses and replies.
// Likes always equals len(LikedBy) after a toggle.
type Reactions struct {
	Likes   int
	LikedBy []uuid.UUID
}

func (r *Reactions) HasLiked(userId uuid.UUID) bool {
	for _, id := range r.LikedBy {
		if id == userId {
			return true
		}
	}
	return false
}

// ToggleLike flips userId's like and reports whether it is now liked.
func (r *Reactions) ToggleLike(userId uuid.UUID) bool {
	liked := false
	kept := make([]uuid.UUID, 0, len(r.LikedBy)+1)
	for _, id := range r.LikedBy {
		if id == userId {
			liked = true
			continue
		}
		kept = append(kept, id)
	}

	if !liked {
		kept = append(kept, userId)
	}
	r.LikedBy = kept
	// Resync instead of +/-1 so a drifted counter heals and never goes negative.
	r.Likes = len(kept)
	return !liked
}
