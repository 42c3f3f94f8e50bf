package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	algo, _ := c.Algorithm()
	assert.Equal(t, datastructure.AlgorithmCH, algo)
	assert.Equal(t, 3000*3000, c.Table.MaxMatrixSize)
	assert.Equal(t, []int{9, 7, 5}, c.Preprocessing.H3Resolutions)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
index:
  algorithm: mld
  metric: distance
table:
  max_matrix_size: 100
  unsnappable_policy: unreachable
snap:
  max_radius: 250
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	algo, _ := c.Algorithm()
	metric, _ := c.Metric()
	policy, _ := c.UnsnappablePolicy()
	assert.Equal(t, datastructure.AlgorithmMLD, algo)
	assert.Equal(t, datastructure.MetricDistance, metric)
	assert.Equal(t, table.PolicyUnreachable, policy)
	assert.Equal(t, 100, c.Table.MaxMatrixSize)
	assert.Equal(t, 250.0, c.Snap.MaxRadius)
	assert.Equal(t, "navigatorx.idx", c.Index.Path, "unset keys keep their default")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"algorithm", func(c *Config) { c.Index.Algorithm = "astar" }},
		{"metric", func(c *Config) { c.Index.Metric = "fuel" }},
		{"policy", func(c *Config) { c.Table.UnsnappablePolicy = "ignore" }},
		{"negative size", func(c *Config) { c.Table.MaxMatrixSize = -1 }},
		{"radius", func(c *Config) { c.Snap.MaxRadius = 0 }},
		{"snap index", func(c *Config) { c.Snap.Index = "quadtree" }},
		{"kv backend", func(c *Config) { c.Snap.Index = "kv"; c.Snap.KVBackend = "leveldb" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
