package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/pable/faceitwatch/internal/config"
)

func TestOpenRosterBackends(t *testing.T) {
	for _, backend := range []string{config.BackendYAML, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{
				RosterBackend: backend,
				RosterPath:    filepath.Join(t.TempDir(), "roster"),
			}
			store, closeFn, err := OpenRoster(cfg)
			if err != nil {
				t.Fatalf("OpenRoster: %v", err)
			}
			defer closeFn()

			ctx := context.Background()
			if err := store.Add(ctx, "alice"); err != nil {
				t.Fatalf("Add: %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil || len(got) != 1 || got[0] != "alice" {
				t.Errorf("Load = %v, %v", got, err)
			}
		})
	}
}

func TestModuleGraph(t *testing.T) {
	cfg := &config.Config{
		RosterBackend:  config.BackendYAML,
		RosterPath:     filepath.Join(t.TempDir(), "roster.yml"),
		PollInterval:   time.Minute,
		RequestTimeout: time.Second,
		HistoryLimit:   1,
		Location:       time.UTC,
	}
	err := fx.ValidateApp(
		fx.Supply(cfg, zerolog.Nop(), Options{}),
		Module,
	)
	if err != nil {
		t.Fatalf("dependency graph: %v", err)
	}
}
