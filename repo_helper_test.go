package accounts_test

import (
	"database/sql"
	"testing"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_digest TEXT NOT NULL,
    remember_digest TEXT,
    activation_digest TEXT,
    activated BOOLEAN NOT NULL DEFAULT FALSE,
    activated_at TIMESTAMP,
    reset_digest TEXT,
    reset_sent_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP
);`

	sqliteCreateRelationships = `CREATE TABLE relationships (
    id TEXT NOT NULL PRIMARY KEY,
    follower_id TEXT NOT NULL,
    followed_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (follower_id) REFERENCES users (id) ON DELETE CASCADE,
    FOREIGN KEY (followed_id) REFERENCES users (id) ON DELETE CASCADE,
    CONSTRAINT uq_relationships_pair UNIQUE (follower_id, followed_id)
);`

	sqliteCreateMicroposts = `CREATE TABLE microposts (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);`
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	for _, ddl := range []string{sqliteCreateUsers, sqliteCreateRelationships, sqliteCreateMicroposts} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return bunDB
}

func setupManager(t *testing.T) accounts.RepositoryManager {
	t.Helper()

	repo := accounts.NewRepositoryManager(
		setupDB(t),
		accounts.WithManagerUsersOptions(
			accounts.WithUsersHasher(accounts.Hasher{Cost: accounts.MinHashCost}),
		),
	)
	repo.MustValidate()
	return repo
}
