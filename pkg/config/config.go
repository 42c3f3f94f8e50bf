package config

import (
	"fmt"
	"os"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/kv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Index struct {
		Path      string `yaml:"path"`
		Algorithm string `yaml:"algorithm"` // ch | mld
		Metric    string `yaml:"metric"`    // duration | distance
	} `yaml:"index"`

	Table struct {
		MaxMatrixSize     int     `yaml:"max_matrix_size"`
		UnsnappablePolicy string  `yaml:"unsnappable_policy"` // reject | unreachable
		Workers           int     `yaml:"workers"`            // 0 = GOMAXPROCS
		DefaultScale      float64 `yaml:"default_scale_factor"`
	} `yaml:"table"`

	Snap struct {
		MaxRadius          float64 `yaml:"max_radius"` // meter
		SmallComponentSize int     `yaml:"small_component_size"`
		CacheSize          int     `yaml:"cache_size"`
		Index              string  `yaml:"index"` // rtree | kv
		KVBackend          string  `yaml:"kv_backend"`
		KVDir              string  `yaml:"kv_dir"`
	} `yaml:"snap"`

	Preprocessing struct {
		H3Resolutions []int `yaml:"h3_resolutions"`
		Workers       int   `yaml:"workers"`
	} `yaml:"preprocessing"`

	Server struct {
		Addr       string `yaml:"addr"`
		Profile    string `yaml:"profile"`
		CORSOrigin string `yaml:"cors_origin"`
	} `yaml:"server"`
}

func Default() Config {
	var c Config
	c.Log.Level = "info"
	c.Index.Path = "navigatorx.idx"
	c.Index.Algorithm = "ch"
	c.Index.Metric = "duration"
	c.Table.MaxMatrixSize = 3000 * 3000
	c.Table.UnsnappablePolicy = "reject"
	c.Table.DefaultScale = 1
	c.Snap.MaxRadius = 500
	c.Snap.SmallComponentSize = 1000
	c.Snap.CacheSize = 1 << 16
	c.Snap.Index = "rtree"
	c.Snap.KVBackend = "badger"
	c.Snap.KVDir = "navigatorx_db"
	c.Preprocessing.H3Resolutions = []int{9, 7, 5}
	c.Server.Addr = ":5000"
	c.Server.Profile = "driving"
	c.Server.CORSOrigin = "*"
	return c
}

// Load reads path on top of Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, c.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if _, err := c.Algorithm(); err != nil {
		return err
	}
	if _, err := c.Metric(); err != nil {
		return err
	}
	if _, err := c.UnsnappablePolicy(); err != nil {
		return err
	}
	if c.Table.MaxMatrixSize < 0 {
		return fmt.Errorf("table.max_matrix_size must not be negative")
	}
	if c.Table.DefaultScale <= 0 {
		return fmt.Errorf("table.default_scale_factor must be positive")
	}
	if c.Snap.MaxRadius <= 0 {
		return fmt.Errorf("snap.max_radius must be positive")
	}
	switch c.Snap.Index {
	case "rtree":
	case "kv":
		if _, err := kv.ParseBackend(c.Snap.KVBackend); err != nil {
			return err
		}
	default:
		return fmt.Errorf("snap.index must be rtree or kv, got %q", c.Snap.Index)
	}
	if len(c.Preprocessing.H3Resolutions) == 0 {
		return fmt.Errorf("preprocessing.h3_resolutions must not be empty")
	}
	return nil
}

func (c Config) Algorithm() (datastructure.Algorithm, error) {
	return datastructure.ParseAlgorithm(c.Index.Algorithm)
}

func (c Config) Metric() (datastructure.WeightMetric, error) {
	return datastructure.ParseWeightMetric(c.Index.Metric)
}

func (c Config) UnsnappablePolicy() (table.UnsnappablePolicy, error) {
	return table.ParseUnsnappablePolicy(c.Table.UnsnappablePolicy)
}
