package credentials

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/versus-control/cloudformation-agent/pkg/interfaces"
	"github.com/versus-control/cloudformation-agent/pkg/types"
)

var _ interfaces.CredentialStore = (*MemoryStore)(nil)

// MemoryStore keeps credential profiles in memory only. Tests and
// short-lived tooling use it; the gateway persists with FileStore.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]types.Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]types.Credentials)}
}

func (s *MemoryStore) Put(ctx context.Context, userID string, creds types.Credentials) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return fmt.Errorf("credentials for %s are incomplete: access key ID and secret access key are required", userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = creds
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (types.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creds, ok := s.profiles[userID]
	if !ok {
		return types.Credentials{}, fmt.Errorf("no credentials stored for user %s", userID)
	}
	return creds, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, userID)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.profiles))
	for userID := range s.profiles {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}
