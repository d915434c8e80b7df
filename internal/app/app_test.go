package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-rank-go/config"
	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/model"
)

func testConfig(t *testing.T, csv string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "if.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	cfg := config.Default()
	cfg.Catalog.Source = path
	return cfg
}

func TestNewLocalOnly(t *testing.T) {
	cfg := testConfig(t, "FullName,ImpactFactor\nNATURE,48.5\nNATURE MEDICINE,58.7\n")
	cfg.Resolver.Strategies = []string{"LocalCatalog"}

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 2, a.Catalog.Len())
	assert.Equal(t, []model.Source{model.SourceLocalCatalog}, a.Coordinator.Sources())

	r := a.Coordinator.Resolve(context.Background(), nil, "Nat Med")
	assert.Equal(t, "NATURE MEDICINE", r.MatchedName)
	assert.Equal(t, model.BandExcellent, r.Band)
}

func TestNewSkipsUnconfiguredProviders(t *testing.T) {
	cfg := testConfig(t, "FullName,ImpactFactor\nNATURE,48.5\n")
	cfg.LLM.OpenRouterKey = ""

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	// 没有 LLM key 时跳过模型估计，其余按顺序保留
	assert.Equal(t, []model.Source{model.SourceLocalCatalog, model.SourceRemoteAPI, model.SourceLiveSearch}, a.Coordinator.Sources())
}

func TestNewTavilyWithoutKey(t *testing.T) {
	cfg := testConfig(t, "FullName,ImpactFactor\nNATURE,48.5\n")
	cfg.Resolver.Strategies = []string{"LocalCatalog", "LiveSearch"}
	cfg.LiveSearch.Provider = "tavily"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.Source{model.SourceLocalCatalog}, a.Coordinator.Sources())
}

func TestNewMissingCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Source = filepath.Join(t.TempDir(), "missing.csv")

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, catalog.IsKind(err, catalog.SourceNotFound))
}

func TestNewMissingColumns(t *testing.T) {
	cfg := testConfig(t, "Journal,Rank\nNATURE,1\n")

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, catalog.IsKind(err, catalog.MissingColumns))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "postgres://user:***@db:5432/if", redact("postgres://user:secret@db:5432/if"))
	assert.Equal(t, "postgres://db/if", redact("postgres://db/if"))
	assert.Equal(t, "data/if.csv", redact("data/if.csv"))
}
