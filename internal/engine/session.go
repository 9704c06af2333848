// Package engine owns game sessions and resolves rounds. A session holds
// the companies, the shared market, the active events, and the seeded
// random stream; RunRound applies one full pipeline pass and appends an
// immutable result to the history.
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

// Phase tracks where a session stands.
type Phase uint8

const (
	PhaseRunning        Phase = iota
	PhaseComplete             // Horizon reached with the player still standing
	PhasePlayerBankrupt       // Player failed before the horizon
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseComplete:
		return "complete"
	case PhasePlayerBankrupt:
		return "player_bankrupt"
	default:
		return "unknown"
	}
}

// Over reports whether no further rounds may run.
func (p Phase) Over() bool { return p != PhaseRunning }

// ErrSessionOver is returned by RunRound once the game has ended.
var ErrSessionOver = errors.New("session is over")

// Config carries the per-game tunables.
type Config struct {
	MaxRounds         int           `json:"max_rounds"`
	FailureThreshold  float64       `json:"failure_threshold"` // Cash below this is a distress round
	UtilizationCap    float64       `json:"utilization_cap"`   // Sellable fraction of capacity
	SalaryPerEmployee float64       `json:"salary_per_employee"`
	EpsilonShare      float64       `json:"epsilon_share"` // Demand floor per active company
	Rules             company.Rules `json:"rules"`
}

// DefaultConfig returns the standard game tuning.
func DefaultConfig() Config {
	return Config{
		MaxRounds:         12,
		FailureThreshold:  -50000,
		UtilizationCap:    0.85,
		SalaryPerEmployee: 100,
		EpsilonShare:      0.02,
		Rules:             company.DefaultRules(),
	}
}

// Setup is everything needed to start a session.
type Setup struct {
	Seed      int64
	Config    Config
	Companies []company.State
	Profiles  map[string]policy.Profile // By company ID; absent rivals play balanced
	Market    market.State
	Events    []events.Definition
}

// Session is one running game.
type Session struct {
	ID        string
	Seed      int64
	Config    Config
	Round     int // Last resolved round; 0 before the first
	Phase     Phase
	Companies []company.State
	Profiles  map[string]policy.Profile
	Market    market.State
	Active    []events.ActiveEvent
	History   []RoundResult

	catalog  events.Catalog
	resolver *events.Engine
	drift    *econ.Drift
	rng      *entropy.Source
	player   int // Index into Companies
}

// NewSession validates the setup and builds a session at round zero.
func NewSession(setup Setup) (*Session, error) {
	if setup.Config.MaxRounds < 1 {
		return nil, fmt.Errorf("max rounds must be positive, got %d", setup.Config.MaxRounds)
	}
	player, err := checkCompanies(setup.Companies)
	if err != nil {
		return nil, err
	}
	catalog, err := events.NewCatalog(setup.Events)
	if err != nil {
		return nil, fmt.Errorf("event catalog: %w", err)
	}

	profiles := make(map[string]policy.Profile, len(setup.Profiles))
	for id, p := range setup.Profiles {
		profiles[id] = p
	}

	return &Session{
		ID:        uuid.NewString(),
		Seed:      setup.Seed,
		Config:    setup.Config,
		Phase:     PhaseRunning,
		Companies: cloneCompanies(setup.Companies),
		Profiles:  profiles,
		Market:    setup.Market,
		catalog:   catalog,
		resolver:  events.NewEngine(catalog),
		drift:     econ.NewDrift(setup.Seed),
		rng:       entropy.NewSource(setup.Seed),
		player:    player,
	}, nil
}

// checkCompanies verifies IDs are unique and exactly one company is the
// player, returning the player's index.
func checkCompanies(group []company.State) (int, error) {
	if len(group) == 0 {
		return 0, errors.New("no companies")
	}
	player := -1
	seen := make(map[string]bool, len(group))
	for i, c := range group {
		if c.ID == "" {
			return 0, fmt.Errorf("company %d has no id", i)
		}
		if seen[c.ID] {
			return 0, fmt.Errorf("duplicate company id %q", c.ID)
		}
		seen[c.ID] = true
		if c.IsPlayer {
			if player >= 0 {
				return 0, fmt.Errorf("more than one player company (%q and %q)", group[player].ID, c.ID)
			}
			player = i
		}
	}
	if player < 0 {
		return 0, errors.New("no player company")
	}
	return player, nil
}

// Player returns the player company's current state.
func (s *Session) Player() company.State { return s.Companies[s.player] }

// Company returns a company by ID.
func (s *Session) Company(id string) (company.State, bool) {
	for _, c := range s.Companies {
		if c.ID == id {
			return c, true
		}
	}
	return company.State{}, false
}

// Latest returns the most recent round result, if any.
func (s *Session) Latest() (RoundResult, bool) {
	if len(s.History) == 0 {
		return RoundResult{}, false
	}
	return s.History[len(s.History)-1], true
}

const adviseSalt = 0x5deece66d

// Advise proposes a player bundle using the balanced policy, clamped so it
// always passes validation. Advice draws from a per-round source, never the
// session stream, so asking for it does not perturb the game.
func (s *Session) Advise() company.DecisionBundle {
	rng := entropy.NewSource(s.Seed ^ int64(s.Round+1)*adviseSalt)
	proposed := policy.Decide(s.Player(), s.outlook(), policy.ProfileBalanced, rng)
	return company.Clamp(s.Player(), proposed, s.Config.Rules.Bounds)
}

func (s *Session) outlook() policy.Outlook {
	return policy.Outlook{
		AvgPrice:     s.Market.AvgPrice,
		DemandLevel:  s.Market.DemandLevel,
		Competition:  s.Market.Competition,
		InterestRate: s.Market.Indicators.InterestRate,
	}
}

func cloneCompanies(in []company.State) []company.State {
	out := make([]company.State, len(in))
	copy(out, in)
	return out
}

func cloneActive(in []events.ActiveEvent) []events.ActiveEvent {
	out := make([]events.ActiveEvent, len(in))
	copy(out, in)
	return out
}
