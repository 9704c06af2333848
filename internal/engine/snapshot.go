package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kestrelworks/venturesim/internal/company"
	"github.com/kestrelworks/venturesim/internal/econ"
	"github.com/kestrelworks/venturesim/internal/entropy"
	"github.com/kestrelworks/venturesim/internal/events"
	"github.com/kestrelworks/venturesim/internal/market"
	"github.com/kestrelworks/venturesim/internal/policy"
)

// ErrCorruptSnapshot marks a snapshot that fails validation on restore.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

const snapshotVersion = 1

// Snapshot is a self-contained serializable capture of a session. It
// carries the event catalog and the rng state, so a restored session
// continues exactly as the original would have.
type Snapshot struct {
	Version   int                  `json:"version"`
	SessionID string               `json:"session_id"`
	Seed      int64                `json:"seed"`
	Config    Config               `json:"config"`
	Round     int                  `json:"round"`
	Phase     Phase                `json:"phase"`
	Companies []company.State      `json:"companies"`
	Profiles  map[string]string    `json:"profiles"`
	Market    market.State         `json:"market"`
	Active    []events.ActiveEvent `json:"active_events"`
	Catalog   []events.Definition  `json:"event_catalog"`
	RNGState  []byte               `json:"rng_state"`
	History   []RoundResult        `json:"history"`
}

// Snapshot captures the session at its current round boundary.
func (s *Session) Snapshot() (Snapshot, error) {
	rngState, err := s.rng.MarshalState()
	if err != nil {
		return Snapshot{}, fmt.Errorf("rng state: %w", err)
	}

	profiles := make(map[string]string, len(s.Profiles))
	for id, p := range s.Profiles {
		profiles[id] = p.String()
	}

	return Snapshot{
		Version:   snapshotVersion,
		SessionID: s.ID,
		Seed:      s.Seed,
		Config:    s.Config,
		Round:     s.Round,
		Phase:     s.Phase,
		Companies: cloneCompanies(s.Companies),
		Profiles:  profiles,
		Market:    s.Market,
		Active:    cloneActive(s.Active),
		Catalog:   s.catalog.Defs(),
		RNGState:  append([]byte(nil), rngState...),
		History:   append([]RoundResult(nil), s.History...),
	}, nil
}

// Restore rebuilds a session from a snapshot. Every structural invariant
// is rechecked; violations come back wrapped in ErrCorruptSnapshot.
func Restore(snap Snapshot) (*Session, error) {
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, snap.Version)
	}
	if snap.Round < 0 {
		return nil, fmt.Errorf("%w: negative round %d", ErrCorruptSnapshot, snap.Round)
	}
	if snap.Config.MaxRounds < 1 {
		return nil, fmt.Errorf("%w: max rounds %d", ErrCorruptSnapshot, snap.Config.MaxRounds)
	}
	player, err := checkCompanies(snap.Companies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	catalog, err := events.NewCatalog(snap.Catalog)
	if err != nil {
		return nil, fmt.Errorf("%w: event catalog: %v", ErrCorruptSnapshot, err)
	}
	rng, err := entropy.RestoreSource(snap.RNGState)
	if err != nil {
		return nil, fmt.Errorf("%w: rng state: %v", ErrCorruptSnapshot, err)
	}

	profiles := make(map[string]policy.Profile, len(snap.Profiles))
	for id, name := range snap.Profiles {
		p, err := policy.ParseProfile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		profiles[id] = p
	}

	id := snap.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	return &Session{
		ID:        id,
		Seed:      snap.Seed,
		Config:    snap.Config,
		Round:     snap.Round,
		Phase:     snap.Phase,
		Companies: cloneCompanies(snap.Companies),
		Profiles:  profiles,
		Market:    snap.Market,
		Active:    cloneActive(snap.Active),
		History:   append([]RoundResult(nil), snap.History...),
		catalog:   catalog,
		resolver:  events.NewEngine(catalog),
		drift:     econ.NewDrift(snap.Seed),
		rng:       rng,
		player:    player,
	}, nil
}
