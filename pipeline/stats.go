package pipeline

import (
	"encoding/json"
	"sync"

	"propsync/models"
)

// StatsSnapshot is an immutable copy of the pipeline's aggregate counters.
type StatsSnapshot struct {
	PagesProcessed  int `json:"pages_processed"`
	CandidatesFound int `json:"candidates_found"`
	Deduped         int `json:"deduped"`
	Synced          int `json:"synced"`
	Failed          int `json:"failed"`
	FatalErrors     int `json:"fatal_errors"`
}

// ToJSON returns the snapshot as run-record metadata.
func (s StatsSnapshot) ToJSON() json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// Stats accumulates counters across the pages of one run.
type Stats struct {
	mu   sync.Mutex
	snap StatsSnapshot
}

func (s *Stats) record(candidates, deduped int, report *models.SyncReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.PagesProcessed++
	s.snap.CandidatesFound += candidates
	s.snap.Deduped += deduped
	s.snap.Synced += report.Succeeded
	s.snap.Failed += report.Failed
}

func (s *Stats) recordFatal(candidates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.PagesProcessed++
	s.snap.CandidatesFound += candidates
	s.snap.FatalErrors++
}

func (s *Stats) snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Stats) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = StatsSnapshot{}
}
