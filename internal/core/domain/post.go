package domain

import (
	"strings"
	"time"
)

type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	InstitutionID string    `json:"institution_id"`
	Content       string    `json:"content"`
	ImageURL      string    `json:"image_url,omitempty"`
	Upvotes       int       `json:"upvotes"`
	Downvotes     int       `json:"downvotes"`
	Pinned        bool      `json:"pinned"`
	Flagged       bool      `json:"flagged"`
	CreatedAt     time.Time `json:"created_at"`
}

type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

func ParseVoteType(s string) (VoteType, error) {
	v := VoteType(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case Upvote, Downvote:
		return v, nil
	default:
		return "", Errorf(KindValidation, "Tipo de voto inválido: %q", s)
	}
}

type PostVote struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	VoteType  VoteType  `json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteOutcome describes what a vote call did to the stored vote.
type VoteOutcome string

const (
	VoteAdded    VoteOutcome = "added"
	VoteRemoved  VoteOutcome = "removed"
	VoteReplaced VoteOutcome = "replaced"
)

// ApplyVote computes the toggle transition for a user voting next on a post where
// current is the user's stored vote (nil when none). It adjusts the post counters in
// place and returns the outcome.
func ApplyVote(post *Post, current *VoteType, next VoteType) VoteOutcome {
	bump := func(v VoteType, delta int) {
		switch v {
		case Upvote:
			post.Upvotes += delta
		case Downvote:
			post.Downvotes += delta
		}
	}
	switch {
	case current == nil:
		bump(next, 1)
		return VoteAdded
	case *current == next:
		bump(next, -1)
		return VoteRemoved
	default:
		bump(*current, -1)
		bump(next, 1)
		return VoteReplaced
	}
}
