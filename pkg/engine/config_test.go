package engine

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sanonone/molgraph/pkg/mol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "molgraph.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("MOLGRAPH_TEST_SEQ", "GASK")
	path := writeConfig(t, `
log_level: debug
cell_size: 4
maintenance_interval: 250ms
entities:
  - name: pep
    chains:
      - name: A
        sequence: ${MOLGRAPH_TEST_SEQ}
      - name: B
        sequence: GLY ALA
        geometry:
          phi: -140
          psi: 135
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" || cfg.CellSize != 4 || cfg.MaintenanceInterval != 250*time.Millisecond {
		t.Errorf("unexpected scalars: %+v", cfg)
	}
	if !cfg.EnableICS {
		t.Error("enable_ics should keep its default")
	}
	if len(cfg.Entities) != 1 || len(cfg.Entities[0].Chains) != 2 {
		t.Fatalf("unexpected entities: %+v", cfg.Entities)
	}
	if got := cfg.Entities[0].Chains[0].Sequence; got != "GASK" {
		t.Errorf("sequence = %q, want expanded GASK", got)
	}

	g := cfg.Entities[0].Chains[1].geometry()
	want := DefaultGeometry()
	want.Phi, want.Psi = -140, 135
	if g != want {
		t.Errorf("geometry overlay = %+v, want %+v", g, want)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if cfg.LogLevel != def.LogLevel || cfg.CellSize != def.CellSize || cfg.EnableICS != def.EnableICS || len(cfg.Entities) != 0 {
		t.Errorf("LoadConfig(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name, body, wantErr string
	}{
		{"unknown field", "cell_sise: 3\n", "cell_sise"},
		{"bad level", "log_level: loud\n", "log level"},
		{"negative cell", "cell_size: -2\n", "cell_size"},
		{"duplicate entity", "entities:\n  - name: a\n  - name: a\n", "duplicate"},
		{"empty sequence", "entities:\n  - name: a\n    chains:\n      - name: A\n", "empty sequence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestNewLogger(t *testing.T) {
	var sb strings.Builder
	log, err := NewLogger(&sb, "warn")
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(sb.String(), "hidden") || !strings.Contains(sb.String(), "shown") {
		t.Errorf("unexpected log output %q", sb.String())
	}
	if _, err := NewLogger(io.Discard, "verbose"); err == nil {
		t.Error("unknown level should fail")
	}
}

func TestPopulate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Entities = []EntityConfig{
		{Name: "dimer", Chains: []ChainConfig{{Sequence: "GAS"}, {Name: "Z", Sequence: "KV"}}},
		{Name: "mono", Chains: []ChainConfig{{Name: "A", Sequence: "G"}}},
	}
	eng, err := Open(cfg.Options(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()
	if err := eng.Populate(cfg); err != nil {
		t.Fatal(err)
	}

	info, err := eng.Info("dimer")
	if err != nil {
		t.Fatal(err)
	}
	if info.Chains != 2 || info.Residues != 5 || info.Fragments != 2 {
		t.Errorf("dimer = %+v", info)
	}
	err = eng.WithEntity("dimer", func(ent *mol.Entity) error {
		if _, ok := ent.FindResidue("A", mol.Num(3)); !ok {
			t.Error("unnamed first chain should be A")
		}
		if _, ok := ent.FindResidue("Z", mol.Num(2)); !ok {
			t.Error("chain Z missing")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// A second populate collides with the existing names.
	if err := eng.Populate(cfg); err == nil {
		t.Error("expected duplicate entity error")
	}

	bad := DefaultConfig()
	bad.Entities = []EntityConfig{{Name: "bad", Chains: []ChainConfig{{Sequence: "GXG"}}}}
	if err := eng.Populate(bad); err == nil || !strings.Contains(err.Error(), "one-letter") {
		t.Errorf("got %v, want sequence error", err)
	}
	if _, err := eng.Info("bad"); err == nil {
		t.Error("failed entity should not stay registered")
	}
}
