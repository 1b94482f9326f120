// Package config provides configuration management for the One-Stroke game.
//
// The config package handles:
//   - Loading run configurations from JSON or YAML files
//   - Validation through the engine's config rules
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Configurations live in the configs directory as name.json, name.yaml or
// name.yml. Each one defines the player's starting HP, gold and one-stroke
// bonus, the tile spawn table, the stage ladder with its enemies and action
// patterns, the reward catalog and the player-facing messages. Omitted
// numeric fields and tables fall back to the engine defaults.
//
// The config id is the file name without extension; it is what sessions are
// created with.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gauntlet, err := manager.LoadConfig("gauntlet")
//	infos, err := manager.ListConfigs()
//
// Caching:
//
// Loaded configurations are cached by id. Concurrent first loads of the same
// id share a single file read. RefreshCache drops the cache and re-resolves
// the default.
package config
