// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Centralised store of per-sample synchronization results.

package report

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrRecordNotFound = errors.New("record not found")

type ID int64

type Store struct {
	mu      sync.RWMutex
	records map[ID]Record
	next    ID
}

func NewStore() *Store {
	return &Store{
		records: make(map[ID]Record),
	}
}

func (s *Store) Insert(r Record) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[s.next] = r
	id := s.next
	s.next++

	return id
}

func (s *Store) Get(id ID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return r, fmt.Errorf("getting record: %w", ErrRecordNotFound)
	}

	return r, nil
}

// GetIDs returns record IDs ordered by sample index, the order the map
// rendering contract requires.
func (s *Store) GetIDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]ID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.records[ids[i]].SampleIndex < s.records[ids[j]].SampleIndex
	})
	return ids
}

func (s *Store) Update(id ID, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return fmt.Errorf("updating record: %w", ErrRecordNotFound)
	}

	s.records[id] = r
	return nil
}

// Records returns all records ordered by sample index.
func (s *Store) Records() []Record {
	ids := s.GetIDs()
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, s.records[id])
	}
	return records
}

// Record is one aligned sample set as handed to downstream consumers:
// corrected coordinate, per-camera frame references and the quality flags
// accumulated through the pipeline.
type Record struct {
	SampleIndex int
	// Timestamp of the reference camera frame, seconds from stream start.
	Timestamp float64
	// Corrected coordinate for the sample.
	Lat float64
	Lon float64
	// GpsTime is the wallclock of the matched GPS fix in EXIF format.
	GpsTime string
	// MatchDelta is |frame timestamp - matched fix timestamp| on the
	// reference camera, seconds.
	MatchDelta float64
	// Spread is the cross-camera timestamp spread, seconds.
	Spread float64

	// Per-camera extracted frame image paths.
	FrontRightImage string
	FrontLeftImage  string
	SideRightImage  string
	SideLeftImage   string

	// Quality flags. Never fatal, consumers filter on them.
	Extrapolated      bool
	LowConfidence     bool
	LowSyncConfidence bool
	// NoGps marks samples extracted without any GPS fix, so Lat/Lon carry no
	// meaning. Map and plot rendering skip these.
	NoGps bool
	// ExtractionFailed marks samples where one or more camera frames could
	// not be decoded.
	ExtractionFailed bool
}
