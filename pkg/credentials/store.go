package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/versus-control/cloudformation-agent/internal/logging"
	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

var _ interfaces.CredentialStore = (*FileStore)(nil)

// FileStore persists named credential profiles as JSON on disk. Saves
// write to a temporary file and rename into place so a crash mid-write
// never leaves a torn file.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	logger   *logging.Logger
	profiles map[string]types.Credentials
}

// NewFileStore opens the store at filePath, loading existing profiles
// if the file is present.
func NewFileStore(filePath string, logger *logging.Logger) (*FileStore, error) {
	store := &FileStore{
		filePath: filePath,
		logger:   logger,
		profiles: make(map[string]types.Credentials),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential store directory: %w", err)
	}

	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.logger.WithField("file", s.filePath).Debug("Credential store file does not exist yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read credential store: %w", err)
	}

	profiles := make(map[string]types.Credentials)
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to parse credential store: %w", err)
	}

	s.profiles = profiles
	s.logger.WithField("profiles", len(profiles)).Info("Credential store loaded")
	return nil
}

// save persists the current profiles. Callers hold the write lock.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential store: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary credential store file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary credential store file: %w", err)
	}
	return nil
}

// Put stores or replaces one user's credentials.
func (s *FileStore) Put(ctx context.Context, userID string, creds types.Credentials) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return fmt.Errorf("credentials for %s are incomplete: access key ID and secret access key are required", userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[userID] = creds
	if err := s.save(); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user":        userID,
		"accessKeyId": logging.TruncateKeyID(creds.AccessKeyID),
	}).Info("Stored credentials for user")
	return nil
}

// Get returns one user's credentials.
func (s *FileStore) Get(ctx context.Context, userID string) (types.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creds, ok := s.profiles[userID]
	if !ok {
		return types.Credentials{}, fmt.Errorf("no credentials stored for user %s", userID)
	}
	return creds, nil
}

// Delete removes one user's credentials. Deleting an absent profile is
// not an error.
func (s *FileStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[userID]; !ok {
		return nil
	}
	delete(s.profiles, userID)
	if err := s.save(); err != nil {
		return err
	}

	s.logger.WithField("user", userID).Info("Deleted credentials for user")
	return nil
}

// List returns the stored profile IDs in sorted order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.profiles))
	for userID := range s.profiles {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}
