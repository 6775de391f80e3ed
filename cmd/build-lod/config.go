package main

import (
	"encoding/json"
	"os"
)

// Config mirrors the CLI flag table of spec §6 as a flat, JSON-tagged
// struct, the same shape the teacher uses so a run can be reproduced
// from a saved "-c config.json" file.
type Config struct {
	Unlod        bool    `json:"unlod"`
	Csplat       bool    `json:"csplat"`
	Format       string  `json:"format"`  // "rad", "spz", "spz-chunked"
	Builder      string  `json:"builder"` // "tiny-lod", "bhatt-lod"
	Base         float64 `json:"base"`
	MaxSH        int     `json:"maxSh"` // -1 means "no clamp"
	MinBox       string  `json:"minBox"`
	MaxBox       string  `json:"maxBox"`
	WithinDist   string  `json:"withinDist"`
	SkipValidate bool    `json:"skipValidate"`
	PruneMetric  string  `json:"pruneMetric"` // "area", "feature_size"
	Log          string  `json:"log"`
}

func parseJSONConfig(config *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(config)
}
