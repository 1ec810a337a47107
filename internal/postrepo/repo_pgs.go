// Package postrepo manages repository layer of social posts.
package postrepo

import (
	"context"
	"database/sql"

	"github.com/doomscrollr/crowdbank/internal/domain"
	"github.com/doomscrollr/crowdbank/pkg/dbpkg"
	"github.com/doomscrollr/crowdbank/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates post repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns post RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    posts (author_id, content)
VALUES
    ($1, $2)
RETURNING id, author_id, content, created_at
`

// Create creates the post and then returns it.
func (r *RepoPGS) Create(ctx context.Context, authorID int32, content string) (domain.Post, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, authorID, content)

	var p domain.Post

	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Content,
		&p.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "posts_author_id_fkey" {
				return p, domain.ErrAccountNotFound
			}
		}

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const getQuery = `
SELECT
	p.id, p.author_id, p.content, count(l.id), p.created_at
FROM posts p
LEFT JOIN likes l ON l.post_id = p.id
WHERE p.id = $1
GROUP BY p.id
`

// Get returns the post with the given id including its like count.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Post, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var p domain.Post

	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Content,
		&p.Likes,
		&p.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return p, domain.ErrPostNotFound
		}

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const listQuery = `
SELECT
	p.id, p.author_id, p.content, count(l.id), p.created_at
FROM posts p
LEFT JOIN likes l ON l.post_id = p.id
WHERE p.author_id = $1 OR $1 = 0
GROUP BY p.id
ORDER BY p.created_at DESC, p.id DESC
LIMIT $2 OFFSET $3
`

// List returns posts newest first, optionally filtered by author.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListPostsParams) ([]domain.Post, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.AuthorID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Post{}

	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Likes, &p.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, p)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const insertLikeQuery = `
INSERT INTO
    likes (post_id, account_id)
VALUES
    ($1, $2)
ON CONFLICT (post_id, account_id) DO NOTHING
`

const deleteLikeQuery = `
DELETE FROM likes
WHERE post_id = $1 AND account_id = $2
`

// ToggleLike likes the post for the account, or removes the like if it
// already exists. It reports whether the account likes the post afterwards.
func (r *RepoPGS) ToggleLike(ctx context.Context, postID int64, accountID int32) (bool, error) {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, insertLikeQuery, postID, accountID)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "likes_post_id_fkey":
				return false, domain.ErrPostNotFound
			case "likes_account_id_fkey":
				return false, domain.ErrAccountNotFound
			}
		}

		return false, errorspkg.ErrInternal
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	if inserted > 0 {
		return true, nil
	}

	if _, err := r.db.ExecContext(ctx, deleteLikeQuery, postID, accountID); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return false, nil
}

const createCommentQuery = `
INSERT INTO
    comments (post_id, author_id, content)
VALUES
    ($1, $2, $3)
RETURNING id, post_id, author_id, content, created_at
`

// CreateComment creates a comment on the post and then returns it.
func (r *RepoPGS) CreateComment(ctx context.Context, postID int64, authorID int32, content string) (domain.Comment, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createCommentQuery, postID, authorID, content)

	var c domain.Comment

	err := row.Scan(
		&c.ID,
		&c.PostID,
		&c.AuthorID,
		&c.Content,
		&c.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "comments_post_id_fkey":
				return c, domain.ErrPostNotFound
			case "comments_author_id_fkey":
				return c, domain.ErrAccountNotFound
			}
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const listCommentsQuery = `
SELECT
	id, post_id, author_id, content, created_at
FROM comments
WHERE post_id = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// ListComments returns the post's comments oldest first.
func (r *RepoPGS) ListComments(ctx context.Context, postID int64, limit, offset int32) ([]domain.Comment, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listCommentsQuery, postID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Comment{}

	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
