// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the database connection string in the OS credential
// store so it never lands in config.json or shell history.
//
// On macOS the native `security` command is preferred; elsewhere the
// 99designs/keyring backends are used (Keychain, Windows Credential Manager,
// Secret Service, pass). There is deliberately no plain-file fallback.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlpilot"

// KeyDSN is the item holding the database connection string.
const KeyDSN = "db_dsn"

// ErrNotFound is returned when no DSN has been stored.
var ErrNotFound = errors.New("no connection string stored in the keychain")

var (
	globalManager *Manager
	mu            sync.Mutex
)

// backend is the minimal store contract shared by the native and keyring stores.
type backend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to stored secrets.
type Manager struct {
	mu    sync.RWMutex
	store backend
}

// NewManager opens the platform credential store.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if b, err := newSecurityBackend(); err == nil {
			return &Manager{store: b}, nil
		}
	}
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewWithKeyring(ring), nil
}

// NewWithKeyring wraps an already opened keyring.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{store: ringBackend{ring: ring}}
}

// GetManager returns the process-wide manager, retrying initialization
// after a previous failure.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
	})
	if err != nil {
		return nil, errors.New("no OS credential store available; set SQLPILOT_DSN instead")
	}
	return ring, nil
}

// SaveDSN stores the database DSN.
func (m *Manager) SaveDSN(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(KeyDSN, dsn)
}

// LoadDSN returns the stored DSN or ErrNotFound.
func (m *Manager) LoadDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dsn, err := m.store.Get(KeyDSN)
	if err != nil {
		return "", err
	}
	if dsn == "" {
		return "", ErrNotFound
	}
	return dsn, nil
}

// ClearDSN removes the stored DSN. Missing entries are not an error.
func (m *Manager) ClearDSN() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(KeyDSN)
}

type ringBackend struct {
	ring keyring.Keyring
}

func (r ringBackend) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringBackend) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringBackend) Delete(key string) error {
	if err := r.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
