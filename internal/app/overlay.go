package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// Persisted keys. Each is independent; any of them may be absent or corrupt.
const (
	KeyApprovals = "flex-living-approvals"
	KeyStatuses  = "flex-review-statuses"
	KeyNotes     = "flex-review-notes"
)

// OverlayStore keeps operator state (approval, status, note) per review id.
// The in-memory maps are a read copy of the KV store. Every mutation is a
// read-modify-write of its key through KVStore.Update, so writers in other
// processes are never overwritten; Reload picks up their changes.
type OverlayStore struct {
	kv domain.KVStore

	mu        sync.RWMutex
	approvals map[string]struct{}
	statuses  map[string]domain.ReviewStatus
	notes     map[string]string
}

// LoadOverlay reads the three overlay keys. Absent, unreadable or malformed
// keys fall back to empty state.
func LoadOverlay(ctx context.Context, kv domain.KVStore) *OverlayStore {
	s := &OverlayStore{kv: kv}
	s.Reload(ctx)
	return s
}

// Reload replaces the read copy with the persisted state.
func (s *OverlayStore) Reload(ctx context.Context) {
	approvals := approvalsFrom(readKey(ctx, s.kv, KeyApprovals))
	statuses := statusesFrom(readKey(ctx, s.kv, KeyStatuses))
	notes := notesFrom(readKey(ctx, s.kv, KeyNotes))

	s.mu.Lock()
	s.approvals, s.statuses, s.notes = approvals, statuses, notes
	s.mu.Unlock()
}

// readKey returns the raw value of key, or nil when it is absent or unreadable.
func readKey(ctx context.Context, kv domain.KVStore, key string) []byte {
	b, ok, err := kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("state read failed, using empty default")
		return nil
	}
	if !ok {
		return nil
	}
	return b
}

// decodeKey unmarshals b into dst; empty or malformed input reports false.
func decodeKey(key string, b []byte, dst any) bool {
	if len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("state corrupted, using empty default")
		return false
	}
	return true
}

func approvalsFrom(b []byte) map[string]struct{} {
	out := map[string]struct{}{}
	var ids []string
	if decodeKey(KeyApprovals, b, &ids) {
		for _, id := range ids {
			out[id] = struct{}{}
		}
	}
	return out
}

func statusesFrom(b []byte) map[string]domain.ReviewStatus {
	out := map[string]domain.ReviewStatus{}
	var raw map[string]string
	if decodeKey(KeyStatuses, b, &raw) {
		for id, v := range raw {
			if st := domain.ReviewStatus(v); st.Valid() {
				out[id] = st
			}
		}
	}
	return out
}

func notesFrom(b []byte) map[string]string {
	out := map[string]string{}
	var raw map[string]string
	if decodeKey(KeyNotes, b, &raw) {
		for id, n := range raw {
			if n = strings.TrimSpace(n); n != "" {
				out[id] = n
			}
		}
	}
	return out
}

// encodeKey marshals v, or returns nil for an empty collection so the key is
// removed rather than stored empty.
func encodeKey(n int, v any) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	return json.Marshal(v)
}

func (s *OverlayStore) IsApproved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.approvals[id]
	return ok
}

func (s *OverlayStore) Status(id string) domain.ReviewStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.statuses[id]; ok {
		return st
	}
	return domain.StatusNew
}

func (s *OverlayStore) Note(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes[id]
}

// Entry returns the overlay for id with defaults applied.
func (s *OverlayStore) Entry(id string) domain.Overlay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, approved := s.approvals[id]
	st, ok := s.statuses[id]
	if !ok {
		st = domain.StatusNew
	}
	return domain.Overlay{Approved: approved, Status: st, Note: s.notes[id]}
}

// ApprovedIDs returns the approval set sorted for stable output.
func (s *OverlayStore) ApprovedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.approvals)
}

// ToggleApproval flips id's membership in the approval set and returns the new state.
func (s *OverlayStore) ToggleApproval(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next map[string]struct{}
	var approved bool
	err := s.kv.Update(ctx, KeyApprovals, func(cur []byte) ([]byte, error) {
		next = approvalsFrom(cur)
		if _, ok := next[id]; ok {
			delete(next, id)
			approved = false
		} else {
			next[id] = struct{}{}
			approved = true
		}
		return encodeKey(len(next), sortedKeys(next))
	})
	if err != nil {
		_, was := s.approvals[id]
		return was, fmt.Errorf("persist %s: %w", KeyApprovals, err)
	}
	s.approvals = next
	observability.ObserveOverlay("approval")
	return approved, nil
}

func (s *OverlayStore) SetStatus(ctx context.Context, id string, st domain.ReviewStatus) error {
	if !st.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var next map[string]domain.ReviewStatus
	err := s.kv.Update(ctx, KeyStatuses, func(cur []byte) ([]byte, error) {
		next = statusesFrom(cur)
		next[id] = st
		return encodeKey(len(next), next)
	})
	if err != nil {
		return fmt.Errorf("persist %s: %w", KeyStatuses, err)
	}
	s.statuses = next
	observability.ObserveOverlay("status")
	return nil
}

// SetNote stores the trimmed text; empty text removes the note instead.
func (s *OverlayStore) SetNote(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	defer s.mu.Unlock()

	var next map[string]string
	err := s.kv.Update(ctx, KeyNotes, func(cur []byte) ([]byte, error) {
		next = notesFrom(cur)
		if text == "" {
			delete(next, id)
		} else {
			next[id] = text
		}
		return encodeKey(len(next), next)
	})
	if err != nil {
		return fmt.Errorf("persist %s: %w", KeyNotes, err)
	}
	s.notes = next
	observability.ObserveOverlay("note")
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
