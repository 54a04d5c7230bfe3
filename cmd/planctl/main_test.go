package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseArgs = []string{"-age", "30", "-sex", "male", "-height", "175", "-weight", "70"}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append(append([]string{}, baseArgs...), args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Budget(t *testing.T) {
	code, out, _ := runCLI(t, "-budget", "-json")

	require.Equal(t, exitCodeSuccess, code)
	var got budgetOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2643.0, got.Budget.Calories)
	assert.False(t, got.FloorApplied)
}

func TestRun_BudgetText(t *testing.T) {
	code, out, _ := runCLI(t, "-budget")

	require.Equal(t, exitCodeSuccess, code)
	assert.Contains(t, out, "Daily target: 2643 kcal")
}

func TestRun_PlanIsReproducible(t *testing.T) {
	code, first, stderr := runCLI(t, "-goal", "weight_loss", "-seed", "11", "-json")
	require.Equal(t, exitCodeSuccess, code, stderr)
	code, second, _ := runCLI(t, "-goal", "weight_loss", "-seed", "11", "-json")
	require.Equal(t, exitCodeSuccess, code)

	var a, b planOutput
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))
	assert.Equal(t, uint64(11), a.Seed)
	assert.Equal(t, a.Plan, b.Plan)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRun_InvalidProfile(t *testing.T) {
	code, _, stderr := runCLI(t, "-goal", "get huge")

	assert.Equal(t, exitCodeUsage, code)
	assert.Contains(t, stderr, "invalid profile")
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitCodeUsage, run([]string{"-frobnicate"}, &stdout, &stderr))
}

func TestRun_MissingCatalogFile(t *testing.T) {
	code, _, stderr := runCLI(t, "-catalog", filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, exitCodeFailure, code)
	assert.Contains(t, stderr, "CATALOG_UNAVAILABLE")
}

func TestRun_EmptyCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"empty","foods":[]}`), 0o600))

	code, _, _ := runCLI(t, "-catalog", path)

	assert.Equal(t, exitCodeFailure, code)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"peanuts", "soy"}, splitList(" peanuts, ,soy "))
	assert.Nil(t, splitList(""))
}
