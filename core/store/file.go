package store

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// envelope is the on-disk format of an encrypted file.
type envelope struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// File stores all keys in one JSON document on disk.
type File struct {
	path       string
	passphrase []byte

	mu      sync.Mutex
	keySalt []byte
	key     []byte
}

// FileOption configures a File store.
type FileOption func(*File)

// WithPassphrase enables encryption at rest.
func WithPassphrase(passphrase string) FileOption {
	return func(f *File) {
		if passphrase != "" {
			f.passphrase = []byte(passphrase)
		}
	}
}

// NewFile creates a File store at path, creating parent directories (0700).
func NewFile(path string, opts ...FileOption) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty file path", ErrUnavailable)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	f := &File{path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}
	data[key] = value
	return f.save(data)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

// Watch calls onChange whenever the file is created, written, replaced or
// removed, including by other processes. It blocks until ctx is done.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	defer w.Close()

	// Atomic renames replace the inode, so watch the directory instead of the file.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	name := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return errors.Join(ErrUnavailable, err)
		}
	}
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return make(map[string]string), nil
	}

	if f.passphrase != nil {
		if raw, err = f.decrypt(raw); err != nil {
			return nil, err
		}
	} else if isEnvelope(raw) {
		// An encrypted session must not be read, or rewritten, as plain keys.
		return nil, errors.Join(ErrUnavailable, ErrDecrypt)
	}

	data := make(map[string]string)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return data, nil
}

func (f *File) save(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if f.passphrase != nil {
		if raw, err = f.encrypt(raw); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Join(ErrUnavailable, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Join(ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

func (f *File) deriveKey(salt []byte) []byte {
	if f.key != nil && bytes.Equal(f.keySalt, salt) {
		return f.key
	}
	f.keySalt = salt
	f.key = argon2.IDKey(f.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	return f.key
}

func (f *File) encrypt(plain []byte) ([]byte, error) {
	salt := f.keySalt
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
	}

	aead, err := chacha20poly1305.NewX(f.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plain, nil),
	})
}

func isEnvelope(raw []byte) bool {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false
	}
	return len(env.Salt) > 0 && len(env.Nonce) > 0 && len(env.Ciphertext) > 0
}

func (f *File) decrypt(raw []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Salt) == 0 {
		return nil, ErrDecrypt
	}

	aead, err := chacha20poly1305.NewX(f.deriveKey(env.Salt))
	if err != nil {
		return nil, errors.Join(ErrDecrypt, err)
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plain, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
