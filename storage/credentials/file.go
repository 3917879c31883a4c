package credstore

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"

	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

var keySalt = []byte("project-course-sub001.storage.credentials")

const recordName = "credentials"

// record is the persisted shape: the token, user and role fields travel as
// one sealed unit so they can only ever be written or cleared together.
type record struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
	Role  session.Role `json:"role"`
}

// FileStore persists the session to a single file, sealed with an
// authenticated encryption codec whose keys derive from a passphrase.
// Tampered or undecodable content reads as absence rather than error.
type FileStore struct {
	mu    sync.Mutex
	path  string
	codec *securecookie.SecureCookie
}

var _ session.Store = (*FileStore)(nil)

func NewFileStore(path, passphrase string) (*FileStore, error) {
	key, err := scrypt.Key([]byte(passphrase), keySalt, 1<<15, 8, 1, 64)
	if err != nil {
		return nil, errors.Wrap(err, "deriving credential store keys")
	}
	codec := securecookie.New(key[:32], key[32:])
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(0) // the token carries its own expiry; storage holds no policy
	return &FileStore{path: path, codec: codec}, nil
}

func (s *FileStore) Set(sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{Token: sess.Token, User: sess.User, Role: sess.User.Role}
	sealed, err := s.codec.Encode(recordName, rec)
	if err != nil {
		return errors.Wrap(err, "sealing credentials")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating credentials dir")
	}
	// write-then-rename keeps the record atomic: a crash mid-write can
	// never leave a partial or mixed record behind
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sealed), 0o600); err != nil {
		return errors.Wrap(err, "writing credentials")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "committing credentials")
}

func (s *FileStore) Get() (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Session{}, core.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "reading credentials")
	}

	var rec record
	if err := s.codec.Decode(recordName, string(raw), &rec); err != nil {
		// tampered or stale-format content: treat as absence
		return session.Session{}, core.ErrNotFound
	}
	usr := rec.User
	if usr.Role == "" {
		usr.Role = rec.Role
	}
	return session.NewSession(rec.Token, usr), nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing credentials")
	}
	return nil
}
