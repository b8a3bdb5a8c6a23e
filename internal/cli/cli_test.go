package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"journeyboard/internal/cli"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := cli.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func script(name string) string {
	return filepath.Join("..", "replay", "testdata", name+".json")
}

func TestRunUsage(t *testing.T) {
	if _, err := run(t); !errors.Is(err, cli.ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if _, err := run(t, "launch"); !errors.Is(err, cli.ErrUsage) {
		t.Fatalf("expected ErrUsage for unknown command, got %v", err)
	}
	out, err := run(t, "help")
	if err != nil || !strings.Contains(out, "replay") {
		t.Fatalf("help: %q, %v", out, err)
	}
}

func TestValidateStandard(t *testing.T) {
	out, err := run(t, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, want := range []string{"STANDARD_PLAYER_BOARD is valid", "locked", "5 silver, 5 golden, 2 reserve", "FIFTH_PAIR", "specimens: 16"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateBadBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte(`{"board_id": "X", "worker_rows": [{"row_index": 1, "max_seals": 1, "seal_slots": [{"slot_index": 0}]}]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := run(t, "validate", "-board", path); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := run(t, "validate", "-board", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestReplayAndShow(t *testing.T) {
	t.Setenv("JOURNEY_STORE", "sqlite")
	t.Setenv("JOURNEY_DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("JOURNEY_LOG_LEVEL", "error")

	out, err := run(t, "replay", "-workers", "2", script("pair_bonus"), script("golden_seal"))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !regexp.MustCompile(`pair_bonus\s+A\s+8\s+5\s+4\s+17`).MatchString(out) {
		t.Fatalf("missing pair bonus score line:\n%s", out)
	}
	if !regexp.MustCompile(`golden_seal\s+A\s+0\s+7\s+0\s+7`).MatchString(out) {
		t.Fatalf("missing golden seal score line:\n%s", out)
	}

	list, err := run(t, "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	m := regexp.MustCompile(`(?m)^([0-9a-f-]{36})\s+pair_bonus\s`).FindStringSubmatch(list)
	if m == nil {
		t.Fatalf("pair_bonus snapshot not listed:\n%s", list)
	}

	detail, err := run(t, "show", "-id", m[1])
	if err != nil {
		t.Fatalf("show -id: %v", err)
	}
	if !strings.Contains(detail, "phase GameOver") || !regexp.MustCompile(`A\s+1\s+17\s+1\s+2\s+17`).MatchString(detail) {
		t.Fatalf("unexpected detail:\n%s", detail)
	}

	if _, err := run(t, "show", "-id", "nope"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestReplayErrors(t *testing.T) {
	t.Setenv("JOURNEY_LOG_LEVEL", "error")
	if _, err := run(t, "replay"); !errors.Is(err, cli.ErrUsage) {
		t.Fatalf("replay without scripts: %v", err)
	}
	if _, err := run(t, "replay", "-objective-order", "script", script("pair_bonus")); err == nil {
		t.Fatal("script order without a rules file should fail")
	}
	if _, err := run(t, "replay", "-store", "carrier-pigeon", script("pair_bonus")); err == nil {
		t.Fatal("expected unsupported store error")
	}
	if _, err := run(t, "replay", "-coins", "0", script("pair_bonus")); err == nil {
		t.Fatal("pair_bonus cannot be played without coins")
	}
}

func TestReplayWithRulesScript(t *testing.T) {
	t.Setenv("JOURNEY_LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "rules.lua")
	src := `function allow_objective(player, slot_id) return slot_id ~= "GOLDEN_5", "closed" end`
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := run(t, "replay", "-rules", path, "-objective-order", "script", script("pair_bonus"))
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected the script to refuse GOLDEN_5, got %v", err)
	}
	if _, err := run(t, "replay", "-rules", path, "-objective-order", "script", script("golden_seal")); err != nil {
		t.Fatalf("golden_seal claims no objectives: %v", err)
	}
}

func TestEnvConfigError(t *testing.T) {
	t.Setenv("JOURNEY_WORKERS", "lots")
	if _, err := run(t, "replay", script("pair_bonus")); err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Fatalf("expected env parse error, got %v", err)
	}
}
