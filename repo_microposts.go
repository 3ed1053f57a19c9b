package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Pager is the limit/offset slice a listing call asks for. The zero value
// means "first page, default size".
type Pager struct {
	Limit  int
	Offset int
}

const defaultPageSize = 30

func (p Pager) limit() int {
	if p.Limit <= 0 {
		return defaultPageSize
	}
	return p.Limit
}

// Microposts stores and queries status posts.
type Microposts interface {
	Create(ctx context.Context, post *Micropost) (*Micropost, error)
	ByUser(ctx context.Context, userID uuid.UUID, pager Pager) ([]*Micropost, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Feed(ctx context.Context, userID uuid.UUID, pager Pager) ([]*Micropost, error)
}

type microposts struct {
	db *bun.DB
}

var _ Microposts = (*microposts)(nil)

func NewMicropostsRepository(db *bun.DB) Microposts {
	return &microposts{db: db}
}

func (m *microposts) Create(ctx context.Context, post *Micropost) (*Micropost, error) {
	if err := post.Validate(); err != nil {
		return nil, wrapValidationError(err)
	}

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	if _, err := m.db.NewInsert().Model(post).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create micropost")
	}
	return post, nil
}

func (m *microposts) ByUser(ctx context.Context, userID uuid.UUID, pager Pager) ([]*Micropost, error) {
	var posts []*Micropost
	err := m.db.NewSelect().
		Model(&posts).
		Where("?TableAlias.user_id = ?", userID).
		OrderExpr("?TableAlias.created_at DESC").
		Limit(pager.limit()).
		Offset(pager.Offset).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list microposts")
	}
	return posts, nil
}

func (m *microposts) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := m.db.NewSelect().
		Model((*Micropost)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Count(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count microposts")
	}
	return count, nil
}

// Feed returns posts authored by the user or by anyone the user follows,
// newest first. The contract is the membership condition
// "author IN (followed set) OR author = self"; the subquery is an
// implementation detail.
func (m *microposts) Feed(ctx context.Context, userID uuid.UUID, pager Pager) ([]*Micropost, error) {
	followed := m.db.NewSelect().
		Model((*Relationship)(nil)).
		Column("followed_id").
		Where("follower_id = ?", userID)

	var posts []*Micropost
	err := m.db.NewSelect().
		Model(&posts).
		Where("?TableAlias.user_id IN (?) OR ?TableAlias.user_id = ?", followed, userID).
		OrderExpr("?TableAlias.created_at DESC").
		Limit(pager.limit()).
		Offset(pager.Offset).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build status feed")
	}
	return posts, nil
}
