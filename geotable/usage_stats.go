package geotable

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// UsageStats tracks how a table is used by a resolver.
type UsageStats struct {
	mutex         sync.Mutex
	origin        Origin
	entries       int
	loadedAt      time.Time
	lastUsed      time.Time
	successCount  uint64
	notFoundCount uint64
	invalidCount  uint64
}

func (u *UsageStats) Used(err error) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	switch {
	case err == nil:
		u.successCount++
	case errors.Is(err, ErrNotFound):
		u.notFoundCount++
	default:
		u.invalidCount++
	}
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var loadedAtTime, lastUsedTime int64

	u.mutex.Lock()

	if !u.loadedAt.IsZero() {
		loadedAtTime = u.loadedAt.Unix()
	}

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	rawStruct := struct {
		Origin        Origin `json:"origin"`
		Entries       int    `json:"entries"`
		LoadedAt      int64  `json:"loaded_at"`
		LastUsed      int64  `json:"last_used"`
		SuccessCount  uint64 `json:"success_count"`
		NotFoundCount uint64 `json:"not_found_count"`
		InvalidCount  uint64 `json:"invalid_count"`
	}{
		Origin:        u.origin,
		Entries:       u.entries,
		LoadedAt:      loadedAtTime,
		LastUsed:      lastUsedTime,
		SuccessCount:  u.successCount,
		NotFoundCount: u.notFoundCount,
		InvalidCount:  u.invalidCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}

func newUsageStats(table *Table) *UsageStats {
	return &UsageStats{
		origin:   table.Origin(),
		entries:  table.Len(),
		loadedAt: table.LoadedAt(),
	}
}
