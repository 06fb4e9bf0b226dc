package securestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"unicode/utf16"

	"golang.org/x/crypto/argon2"

	portkv "github.com/alanyang/prompt-hub/internal/port/kv"
)

const (
	KeyPrefix       = "secure_"
	IntegritySuffix = "_integrity"

	keyLen  = 32
	saltLen = 32
)

var (
	// ErrNotFound matches portkv.ErrNotFound under errors.Is.
	ErrNotFound  = fmt.Errorf("secure item: %w", portkv.ErrNotFound)
	ErrIntegrity = errors.New("data integrity check failed")
)

// Store keeps JSON values encrypted with AES-256-GCM in the key/value tier,
// with a tamper checksum beside each one. Reads are answered from memory first.
// Without a key, values are only base64 encoded.
type Store struct {
	kv  portkv.Store
	key []byte

	mu     sync.RWMutex
	memory map[string][]byte
}

// New returns a store encrypting with key. A nil key selects base64 encoding.
func New(kv portkv.Store, key []byte) *Store {
	return &Store{kv: kv, key: key, memory: make(map[string][]byte)}
}

// Encrypted reports whether values are encrypted rather than only encoded.
func (s *Store) Encrypted() bool { return s.key != nil }

// DeriveKey stretches secret with Argon2id and the salt at saltPath, creating
// the salt on first use.
func DeriveKey(secret, saltPath string) ([]byte, error) {
	salt, err := getOrCreateSalt(saltPath)
	if err != nil {
		return nil, fmt.Errorf("loading key salt: %w", err)
	}
	return argon2.IDKey([]byte(secret), salt, 1, 64*1024, 4, keyLen), nil
}

// SessionKey returns a random key that lives only as long as the process.
func SessionKey() ([]byte, error) {
	key := make([]byte, keyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating session key: %w", err)
	}
	return key, nil
}

func getOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil && len(salt) == saltLen {
		return salt, nil
	}

	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *Store) SetItem(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	stored, err := s.seal(raw)
	if err != nil {
		return fmt.Errorf("sealing %s: %w", key, err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{
		KeyPrefix + key:                   stored,
		KeyPrefix + key + IntegritySuffix: IntegrityHash(stored),
	}); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}

	s.mu.Lock()
	s.memory[key] = raw
	s.mu.Unlock()
	return nil
}

// GetItem decodes the value stored under key into out. It returns ErrNotFound
// when nothing is stored and ErrIntegrity when the checksum does not match.
func (s *Store) GetItem(ctx context.Context, key string, out any) error {
	s.mu.RLock()
	raw, ok := s.memory[key]
	s.mu.RUnlock()
	if ok {
		return json.Unmarshal(raw, out)
	}

	stored, err := s.kv.Get(ctx, KeyPrefix+key)
	if err != nil {
		if errors.Is(err, portkv.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("reading %s: %w", key, err)
	}
	sum, err := s.kv.Get(ctx, KeyPrefix+key+IntegritySuffix)
	if err != nil && !errors.Is(err, portkv.ErrNotFound) {
		return fmt.Errorf("reading %s checksum: %w", key, err)
	}
	if sum != IntegrityHash(stored) {
		return fmt.Errorf("%s: %w", key, ErrIntegrity)
	}

	raw, err = s.open(stored)
	if err != nil {
		return fmt.Errorf("opening %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}

	s.mu.Lock()
	s.memory[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.memory, key)
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, KeyPrefix+key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	if err := s.kv.Delete(ctx, KeyPrefix+key+IntegritySuffix); err != nil {
		return fmt.Errorf("removing %s checksum: %w", key, err)
	}
	return nil
}

// Clear drops the memory layer and every persisted secure key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.memory = make(map[string][]byte)
	s.mu.Unlock()

	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return fmt.Errorf("listing secure keys: %w", err)
	}
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("removing %s: %w", k, err)
		}
	}
	return nil
}

// seal returns base64(nonce || ciphertext), or base64(plaintext) without a key.
func (s *Store) seal(plaintext []byte) (string, error) {
	if s.key == nil {
		return base64.StdEncoding.EncodeToString(plaintext), nil
	}
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

// open reverses seal. A value that fails to decrypt is read as plain base64,
// which covers values written before a key was configured.
func (s *Store) open(stored string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, err
	}
	if s.key == nil {
		return data, nil
	}
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return data, nil
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return data, nil
	}
	return plain, nil
}

func (s *Store) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// IntegrityHash is the 32-bit string hash h = h*31 + c over UTF-16 code units,
// rendered as signed hexadecimal. It detects tampering, not forgery.
func IntegrityHash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h<<5 - h + int32(c)
	}
	return strconv.FormatInt(int64(h), 16)
}
