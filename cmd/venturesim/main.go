// Command venturesim runs the business simulation from the console: the
// player company is auto-piloted by the balanced policy while AI rivals
// play their own strategies, round by round to the horizon.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kestrelworks/venturesim/internal/analytics"
	"github.com/kestrelworks/venturesim/internal/engine"
	"github.com/kestrelworks/venturesim/internal/persistence"
	"github.com/kestrelworks/venturesim/internal/scenario"
)

func main() {
	scenarioPath := flag.String("scenario", "", "scenario YAML file (built-in scenario when empty)")
	dbPath := flag.String("db", "", "SQLite file for game snapshots (persistence off when empty)")
	resumeID := flag.String("resume", "", "session ID to resume (requires -db)")
	seed := flag.Int64("seed", 0, "override the scenario seed")
	rounds := flag.Int("rounds", 0, "override the scenario round count")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if *dbPath != "" {
		var err error
		db, err = persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", *dbPath)
	}

	// ── Session ───────────────────────────────────────────────────────
	s, err := buildSession(db, *resumeID, *scenarioPath, *seed, *rounds)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	player := s.Player()
	fmt.Printf("\n%s vs %d rivals over %d rounds (session %s)\n\n",
		player.Name, len(s.Companies)-1, s.Config.MaxRounds, s.ID)

	// ── Rounds ────────────────────────────────────────────────────────
	for !s.Phase.Over() {
		result, err := s.RunRound(s.Advise())
		if err != nil {
			slog.Error("round failed", "round", s.Round+1, "error", err)
			os.Exit(1)
		}
		fmt.Println(analytics.RoundReport(result))

		if db != nil {
			if err := db.SaveGame(s); err != nil {
				slog.Error("save failed", "round", s.Round, "error", err)
			}
		}
	}

	// ── Final report ──────────────────────────────────────────────────
	text, err := analytics.FinalReport(s.History, analytics.DefaultWeights())
	if err != nil {
		slog.Error("final report failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(text)

	if db != nil {
		if err := db.SaveMeta("last_session", s.ID); err != nil {
			slog.Error("save meta failed", "error", err)
		}
		fmt.Printf("Resume later with: venturesim -db %s -resume %s\n", *dbPath, s.ID)
	}
}

func buildSession(db *persistence.DB, resumeID, path string, seed int64, rounds int) (*engine.Session, error) {
	if resumeID != "" {
		if db == nil {
			return nil, errors.New("-resume requires -db")
		}
		snap, err := db.LoadSnapshot(resumeID)
		if err != nil {
			return nil, err
		}
		s, err := engine.Restore(snap)
		if err != nil {
			return nil, err
		}
		slog.Info("session restored", "session", s.ID, "round", s.Round, "phase", s.Phase)
		return s, nil
	}

	sc := scenario.Default()
	if path != "" {
		var err error
		sc, err = scenario.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if seed != 0 {
		sc.Seed = seed
	}
	if rounds > 0 {
		sc.MaxRounds = rounds
	}

	setup, err := sc.Build()
	if err != nil {
		return nil, err
	}
	s, err := engine.NewSession(setup)
	if err != nil {
		return nil, err
	}
	slog.Info("session started",
		"session", s.ID, "scenario", sc.Name, "seed", sc.Seed, "rounds", s.Config.MaxRounds)
	return s, nil
}
