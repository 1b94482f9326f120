package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/onestroke/game/engine"
	"github.com/wricardo/onestroke/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// extensions are tried in order when resolving a config name
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	loads         singleflight.Group
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	m.defaultConfig = m.loadDefaultConfig()
	return m, nil
}

// configID strips a known extension from name
func configID(name string) string {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// LoadConfig loads a configuration by name, with or without its extension.
// Concurrent loads of the same name share one read.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	config, exists := m.configs[id]
	m.mu.RUnlock()
	if exists {
		return config, nil
	}

	v, err, _ := m.loads.Do(id, func() (interface{}, error) {
		config, err := m.readConfig(id)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.configs[id] = config
		m.mu.Unlock()
		return config, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.GameConfig), nil
}

func (m *Manager) readConfig(id string) (*engine.GameConfig, error) {
	for _, ext := range extensions {
		configPath := filepath.Join(m.configDir, id+ext)
		data, err := os.ReadFile(configPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err := engine.ParseGameConfig(data, strings.TrimPrefix(ext, "."))
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if err := engine.ValidateGameConfig(config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return config, nil
	}
	return nil, ErrConfigNotFound
}

// ListConfigs returns information about all available configurations,
// sorted by config id. Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := configID(entry.Name())
		if id == entry.Name() || seen[id] {
			continue
		}
		seen[id] = true

		config, err := m.LoadConfig(id)
		if err != nil {
			log.Debug("skipping config", "file", entry.Name(), "err", err)
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:          entry.Name(),
			ConfigID:          id, // This is the identifier to use for session creation
			Name:              config.Name,
			Description:       config.Description,
			Stages:            len(config.Stages),
			BossStageInterval: config.BossStageInterval,
			PlayerMaxHP:       config.PlayerMaxHP,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached configurations and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	def := m.loadDefaultConfig()

	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
	return nil
}

// loadDefaultConfig picks classic, then the first valid config on disk, then
// the built-in configuration
func (m *Manager) loadDefaultConfig() *engine.GameConfig {
	if config, err := m.LoadConfig("classic"); err == nil {
		return config
	}
	configs, err := m.ListConfigs()
	if err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].ConfigID); err == nil {
			return config
		}
	}
	log.Info("no usable config on disk, using built-in default", "dir", m.configDir)
	return engine.DefaultGameConfig()
}

// SaveConfig saves a configuration to disk. A name ending in .yaml or .yml is
// written as YAML, anything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidConfig, name)
	}

	var (
		data []byte
		err  error
	)
	filename := name
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		filename = id + ".json"
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}
