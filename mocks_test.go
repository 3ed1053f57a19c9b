package accounts_test

import (
	"context"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// memStore is an in-memory transient session for resolver tests.
type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *memStore) Set(key, value string) {
	s.values[key] = value
}

func (s *memStore) Delete(key string) {
	delete(s.values, key)
}

// memJar is an in-memory cookie jar that signs through a real codec, so
// tamper scenarios exercise actual signature verification.
type memJar struct {
	codec  *accounts.SignedValueCodec
	values map[string]string
}

func newMemJar(codec *accounts.SignedValueCodec) *memJar {
	return &memJar{codec: codec, values: map[string]string{}}
}

func (j *memJar) WriteSigned(name, value string, permanent bool) {
	signed, err := j.codec.Sign(value)
	if err != nil {
		return
	}
	j.values[name] = signed
}

func (j *memJar) Write(name, value string, permanent bool) {
	j.values[name] = value
}

func (j *memJar) ReadSigned(name string) (string, bool) {
	raw, ok := j.values[name]
	if !ok {
		return "", false
	}
	return j.codec.Verify(raw)
}

func (j *memJar) Read(name string) (string, bool) {
	raw, ok := j.values[name]
	return raw, ok
}

func (j *memJar) Delete(name string) {
	delete(j.values, name)
}

// stubUsers satisfies accounts.SessionUsers and accounts.CredentialUsers
// over an in-memory map.
type stubUsers struct {
	hasher      accounts.Hasher
	byID        map[uuid.UUID]*accounts.User
	queries     int
	forgetCalls int
}

func newStubUsers(users ...*accounts.User) *stubUsers {
	s := &stubUsers{
		hasher: accounts.Hasher{Cost: accounts.MinHashCost},
		byID:   map[uuid.UUID]*accounts.User{},
	}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	return s
}

func (s *stubUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	s.queries++

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.NewRecordNotFound()
	}

	user, ok := s.byID[uid]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return user, nil
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	for _, u := range s.byID {
		if u.Email == accounts.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubUsers) Remember(ctx context.Context, user *accounts.User) (string, error) {
	token, err := accounts.NewToken()
	if err != nil {
		return "", err
	}

	digest, err := s.hasher.Hash(token)
	if err != nil {
		return "", err
	}

	user.RememberDigest = digest
	user.RememberToken = token
	return token, nil
}

func (s *stubUsers) Forget(ctx context.Context, user *accounts.User) error {
	s.forgetCalls++
	user.RememberDigest = ""
	user.RememberToken = ""
	return nil
}

// capturingMailer records deliveries instead of sending them.
type capturingMailer struct {
	kinds  []accounts.MailKind
	tokens []string
	users  []*accounts.User
	err    error
}

func (m *capturingMailer) Send(ctx context.Context, kind accounts.MailKind, user *accounts.User, token string) error {
	m.kinds = append(m.kinds, kind)
	m.tokens = append(m.tokens, token)
	m.users = append(m.users, user)
	return m.err
}
