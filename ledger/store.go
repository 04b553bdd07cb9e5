package ledger

import (
	"sync"

	"stake-ledger/types"
)

// MemStore is a Store kept in process memory.
type MemStore struct {
	lock   sync.RWMutex
	stakes map[string]*types.StakeRecord
}

func NewMemStore() *MemStore {
	return &MemStore{stakes: make(map[string]*types.StakeRecord)}
}

func (s *MemStore) Get(account string) (*types.StakeRecord, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	record, ok := s.stakes[account]
	if !ok {
		return nil, nil
	}
	return record.Clone(), nil
}

func (s *MemStore) Apply(m *Mutation) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if m.Next == nil {
		delete(s.stakes, m.Account)
		return nil
	}
	s.stakes[m.Account] = m.Next.Clone()
	return nil
}

// Len returns the number of accounts holding a stake.
func (s *MemStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.stakes)
}
