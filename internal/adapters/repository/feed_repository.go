package repository

import (
	"context"

	"github.com/lib/pq"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type postRepo struct {
	q querier
	// lock makes Get take a row lock so counter updates inside a transaction serialise.
	lock bool
}

var _ ports.PostRepository = (*postRepo)(nil)

const postColumns = `id, author_id, institution_id, content, image_url, upvotes, downvotes, pinned, flagged, created_at`

func scanPost(s scanner) (domain.Post, error) {
	var p domain.Post
	err := s.Scan(&p.ID, &p.AuthorID, &p.InstitutionID, &p.Content, &p.ImageURL,
		&p.Upvotes, &p.Downvotes, &p.Pinned, &p.Flagged, &p.CreatedAt)
	if err != nil {
		return domain.Post{}, mapErr(err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *postRepo) Create(ctx context.Context, p domain.Post) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.AuthorID, p.InstitutionID, p.Content, p.ImageURL,
		p.Upvotes, p.Downvotes, p.Pinned, p.Flagged, p.CreatedAt,
	)
	return mapErr(err)
}

func (r *postRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	if r.lock {
		query += ` FOR UPDATE`
	}
	p, err := scanPost(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) Update(ctx context.Context, p domain.Post) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE posts SET content = $2, image_url = $3, upvotes = $4, downvotes = $5, pinned = $6, flagged = $7
		 WHERE id = $1`,
		p.ID, p.Content, p.ImageURL, p.Upvotes, p.Downvotes, p.Pinned, p.Flagged,
	))
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id))
}

func (r *postRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Post, error) {
	if len(institutionIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE institution_id = ANY($1::uuid[])
		 ORDER BY pinned DESC, created_at DESC, id`,
		pq.Array(institutionIDs),
	)
	return collect(rows, err, scanPost)
}

func (r *postRepo) GetVote(ctx context.Context, postID, userID string) (*domain.PostVote, error) {
	var v domain.PostVote
	err := r.q.QueryRowContext(ctx,
		`SELECT post_id, user_id, vote_type, created_at FROM post_votes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	).Scan(&v.PostID, &v.UserID, &v.VoteType, &v.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return &v, nil
}

func (r *postRepo) UpsertVote(ctx context.Context, v domain.PostVote) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO post_votes (post_id, user_id, vote_type, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (post_id, user_id) DO UPDATE SET vote_type = EXCLUDED.vote_type, created_at = EXCLUDED.created_at`,
		v.PostID, v.UserID, v.VoteType, v.CreatedAt,
	)
	return mapErr(err)
}

func (r *postRepo) DeleteVote(ctx context.Context, postID, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM post_votes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	return mapErr(err)
}
