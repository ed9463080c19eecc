package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/9seconds/geotable/geotable"
	"github.com/hjson/hjson-go"
	"github.com/qri-io/jsonschema"
	"github.com/spf13/afero"
)

const (
	DefaultCacheSize = 4096
	DefaultCacheTTL  = 10 * time.Minute
)

var configJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "additionalProperties": false,
        "properties": {
            "source_path": {
                "type": "string",
                "minLength": 1
            },
            "snapshot_path": {
                "type": "string",
                "minLength": 1
            },
            "write_snapshot": {
                "type": "boolean"
            },
            "validate_order": {
                "type": "boolean"
            },
            "reject_stale": {
                "type": "boolean"
            },
            "cache_size": {
                "type": "integer",
                "minimum": 0
            },
            "cache_ttl": {
                "type": "string",
                "minLength": 2
            },
            "worker_pool_size": {
                "type": "integer",
                "minimum": 0
            },
            "color": {
                "type": "boolean"
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	SourcePath     string   `json:"source_path"`
	SnapshotPath   string   `json:"snapshot_path"`
	WriteSnapshot  *bool    `json:"write_snapshot"`
	ValidateOrder  *bool    `json:"validate_order"`
	RejectStale    bool     `json:"reject_stale"`
	CacheSize      *uint    `json:"cache_size"`
	CacheTTL       duration `json:"cache_ttl"`
	WorkerPoolSize uint     `json:"worker_pool_size"`
	Color          *bool    `json:"color"`
}

func (c *config) GetSourcePath() string {
	if c.SourcePath != "" {
		return c.SourcePath
	}

	return geotable.DefaultSourcePath
}

func (c *config) GetSnapshotPath() string {
	if c.SnapshotPath != "" {
		return c.SnapshotPath
	}

	return geotable.DefaultSnapshotPath
}

func (c *config) GetWriteSnapshot() bool {
	return c.WriteSnapshot == nil || *c.WriteSnapshot
}

func (c *config) GetValidateOrder() bool {
	return c.ValidateOrder == nil || *c.ValidateOrder
}

func (c *config) GetRejectStale() bool {
	return c.RejectStale
}

func (c *config) GetCacheSize() uint {
	if c.CacheSize == nil {
		return DefaultCacheSize
	}

	return *c.CacheSize
}

func (c *config) GetCacheTTL() time.Duration {
	if c.CacheTTL.Duration == 0 {
		return DefaultCacheTTL
	}

	return c.CacheTTL.Duration
}

func (c *config) GetWorkerPoolSize() int {
	if c.WorkerPoolSize == 0 {
		return geotable.DefaultWorkerPoolSize
	}

	return int(c.WorkerPoolSize)
}

func (c *config) GetColor() bool {
	return c.Color == nil || *c.Color
}

// readConfig reads a config file. Empty path means that defaults are used.
func readConfig(fs afero.Fs, path string) (*config, error) {
	if path == "" {
		return &config{}, nil
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return parseConfig(content)
}

func parseConfig(content []byte) (*config, error) {
	conf := &config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse hjson: %w", err)
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize config: %w", err)
	}

	errs, err := configJSONSchema.ValidateBytes(context.Background(), rawBytes)
	if err != nil {
		return nil, fmt.Errorf("cannot validate config: %w", err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errs[0])
	}

	if err := json.Unmarshal(rawBytes, conf); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	if conf.CacheTTL.Duration < 0 {
		return nil, fmt.Errorf("cache_ttl should be positive: %v", conf.CacheTTL.Duration)
	}

	return conf, nil
}
