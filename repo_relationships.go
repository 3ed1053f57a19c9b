package accounts

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Relationships manages the directed follow edges between users.
type Relationships interface {
	Follow(ctx context.Context, followerID, followedID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	FollowingIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error)
	FollowerIDs(ctx context.Context, followedID uuid.UUID) ([]uuid.UUID, error)
	FollowingCount(ctx context.Context, followerID uuid.UUID) (int, error)
	FollowerCount(ctx context.Context, followedID uuid.UUID) (int, error)
}

type relationships struct {
	db *bun.DB
}

var _ Relationships = (*relationships)(nil)

func NewRelationshipsRepository(db *bun.DB) Relationships {
	return &relationships{db: db}
}

// Follow inserts the edge. Following twice is a no-op: the unique pair
// constraint absorbs the duplicate instead of erroring.
func (r *relationships) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	edge := &Relationship{
		ID:         uuid.New(),
		FollowerID: followerID,
		FollowedID: followedID,
	}

	_, err := r.db.NewInsert().
		Model(edge).
		On("CONFLICT (follower_id, followed_id) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create follow edge")
	}
	return nil
}

func (r *relationships) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Relationship)(nil)).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove follow edge")
	}
	return nil
}

func (r *relationships) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Relationship)(nil)).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Exists(ctx)

	if err != nil && err != sql.ErrNoRows {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to query follow edge")
	}
	return exists, nil
}

func (r *relationships) FollowingIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*Relationship)(nil)).
		Column("followed_id").
		Where("follower_id = ?", followerID).
		Scan(ctx, &ids)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list followed users")
	}
	return ids, nil
}

func (r *relationships) FollowerIDs(ctx context.Context, followedID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*Relationship)(nil)).
		Column("follower_id").
		Where("followed_id = ?", followedID).
		Scan(ctx, &ids)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list followers")
	}
	return ids, nil
}

func (r *relationships) FollowingCount(ctx context.Context, followerID uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Relationship)(nil)).
		Where("follower_id = ?", followerID).
		Count(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count followed users")
	}
	return count, nil
}

func (r *relationships) FollowerCount(ctx context.Context, followedID uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*Relationship)(nil)).
		Where("followed_id = ?", followedID).
		Count(ctx)

	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count followers")
	}
	return count, nil
}
