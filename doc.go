// Package accounts provides password authentication primitives for a
// registration/login web application: bcrypt hashing, opaque token issuance,
// a user model carrying remember/activation/reset digests, per-request
// session resolution over a transient store plus a signed persistent cookie
// pair, and a small social graph (follow/unfollow, status feed).
//
// Token lifecycle:
//   - Plaintext tokens (remember, activation, reset) exist only in memory on
//     the request that minted them; storage keeps bcrypt digests. A digest
//     column is NULL exactly when no token has been issued or it was revoked.
//   - User.Authenticated maps a DigestKind to its stored digest through a
//     fixed table and compares with bcrypt. An absent digest always denies.
//
// Session resolution:
//   - CurrentSession memoizes the resolved identity once per request. The
//     transient session wins; otherwise a signed user_id cookie plus a
//     remember token matching the stored digest re-establishes the session.
//     Tampered cookies fail signature verification and read as absent.
//
// Repositories are Bun-backed and receive an injected *bun.DB. Narrow write
// paths (digest updates, activation) run raw SQL and deliberately skip model
// validation; Register is the validated path.
package accounts
