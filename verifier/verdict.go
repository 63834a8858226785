// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/siemens/pingbridge/types"
)

// Verdict about the reachability of a host, as far as known so far. Stats and
// Err are only set in the final Verified and Invalid verdicts.
type Verdict struct {
	Host    string           `json:"host"`
	Quality types.Quality    `json:"quality"`
	Stats   types.Statistics `json:"stats"`
	Err     error            `json:"-"`
}

// key returns the canonical form of a host as to detect the same host spelled
// differently.
func key(host string) string {
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

// VerdictMap maps hosts to their most recent verdicts. A typical use case for
// a VerdictMap is to consume the verdict stream of a Verifier for rendering.
type VerdictMap struct {
	m  map[string]Verdict
	mu sync.Mutex
}

// NewVerdictMap returns a new and properly initialized VerdictMap.
func NewVerdictMap() *VerdictMap {
	return &VerdictMap{
		m: map[string]Verdict{},
	}
}

// Get returns all verdicts from the map, sorted by host.
func (m *VerdictMap) Get() []Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	verdicts := make([]Verdict, 0, len(m.m))
	for _, verdict := range m.m {
		verdicts = append(verdicts, verdict)
	}
	sort.Slice(verdicts, func(a, b int) bool {
		return verdicts[a].Host < verdicts[b].Host
	})
	return verdicts
}

// Update the map with a verdict. Known hosts only get updated when their
// quality progresses:
//   - from unverified to verifying
//   - from verifying to either verified or invalid
func (m *VerdictMap) Update(verdict Verdict) {
	if verdict.Host == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if known, ok := m.m[verdict.Host]; ok && verdict.Quality <= known.Quality {
		return
	}
	m.m[verdict.Host] = verdict
}

// Track verdicts received from the specified channel until the channel is
// closed or the context done. Track only returns after processing all verdicts
// or when the context is done.
func (m *VerdictMap) Track(ctx context.Context, news <-chan Verdict) error {
	for {
		select {
		case verdict, ok := <-news:
			if !ok {
				return nil
			}
			m.Update(verdict)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
