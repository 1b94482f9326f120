package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// EnemyDescriptor configures one enemy of a stage
type EnemyDescriptor struct {
	IsBoss        bool          `json:"is_boss,omitempty" yaml:"is_boss,omitempty"`
	MaxHP         int           `json:"max_hp" yaml:"max_hp"`
	AttackPower   int           `json:"attack_power" yaml:"attack_power"`
	ActionPattern []ActionEntry `json:"action_pattern,omitempty" yaml:"action_pattern,omitempty"`
}

// StageEntry lists the enemies of a stage number
type StageEntry struct {
	Stage   int               `json:"stage" yaml:"stage"`
	Enemies []EnemyDescriptor `json:"enemies" yaml:"enemies"`
}

// Messages are the player-facing texts of a config
type Messages struct {
	Welcome      string `json:"welcome" yaml:"welcome"`
	StageStart   string `json:"stage_start" yaml:"stage_start"`
	BossStage    string `json:"boss_stage" yaml:"boss_stage"`
	StageCleared string `json:"stage_cleared" yaml:"stage_cleared"`
	GameOver     string `json:"game_over" yaml:"game_over"`
	InvalidPath  string `json:"invalid_path" yaml:"invalid_path"`
}

// GameConfig represents a run configuration loaded from JSON or YAML
type GameConfig struct {
	Name                  string             `json:"name" yaml:"name"`
	Description           string             `json:"description" yaml:"description"`
	PlayerMaxHP           int                `json:"player_max_hp" yaml:"player_max_hp"`
	InitialGold           *int               `json:"initial_gold,omitempty" yaml:"initial_gold,omitempty"`
	InitialOneStrokeBonus *int               `json:"initial_one_stroke_bonus,omitempty" yaml:"initial_one_stroke_bonus,omitempty"`
	BossStageInterval     int                `json:"boss_stage_interval" yaml:"boss_stage_interval"`
	RewardChoices         int                `json:"reward_choices" yaml:"reward_choices"`
	Spawn                 SpawnConfig        `json:"spawn" yaml:"spawn"`
	Stages                []StageEntry       `json:"stages" yaml:"stages"`
	Rewards               []RewardDefinition `json:"rewards" yaml:"rewards"`
	Messages              Messages           `json:"messages" yaml:"messages"`
}

// EntryForStage finds the stage table entry for stage: an exact match, else
// the highest entry below it, else the first entry
func (c *GameConfig) EntryForStage(stage int) (*StageEntry, bool) {
	if len(c.Stages) == 0 {
		return nil, false
	}
	var best *StageEntry
	for i := range c.Stages {
		e := &c.Stages[i]
		if e.Stage == stage {
			return e, true
		}
		if e.Stage <= stage && (best == nil || e.Stage > best.Stage) {
			best = e
		}
	}
	if best != nil {
		return best, true
	}
	return &c.Stages[0], true
}

// IsBossStage reports whether stage is a multiple of the boss interval
func (c *GameConfig) IsBossStage(stage int) bool {
	return c.BossStageInterval > 0 && stage > 0 && stage%c.BossStageInterval == 0
}

// StartingGold is the gold a run starts with. An explicit 0 is kept.
func (c *GameConfig) StartingGold() int {
	if c.InitialGold == nil {
		return DefaultInitialGold
	}
	return *c.InitialGold
}

// StartingOneStrokeBonus is the one-stroke bonus a run starts with
func (c *GameConfig) StartingOneStrokeBonus() int {
	if c.InitialOneStrokeBonus == nil {
		return DefaultOneStrokeBonus
	}
	return *c.InitialOneStrokeBonus
}

// IntPtr returns a pointer to v, for the optional numeric config fields
func IntPtr(v int) *int {
	return &v
}

// ApplyDefaults fills unset fields and empty tables. Counts that must be
// positive treat 0 as unset; starting gold and bonus are only defaulted when
// absent.
func (c *GameConfig) ApplyDefaults() {
	if c.PlayerMaxHP == 0 {
		c.PlayerMaxHP = DefaultPlayerMaxHP
	}
	if c.InitialGold == nil {
		c.InitialGold = IntPtr(DefaultInitialGold)
	}
	if c.InitialOneStrokeBonus == nil {
		c.InitialOneStrokeBonus = IntPtr(DefaultOneStrokeBonus)
	}
	if c.BossStageInterval == 0 {
		c.BossStageInterval = DefaultBossStageInterval
	}
	if c.RewardChoices == 0 {
		c.RewardChoices = DefaultRewardChoices
	}
	if c.Spawn == (SpawnConfig{}) {
		c.Spawn = DefaultSpawnConfig()
	}
	if len(c.Rewards) == 0 {
		c.Rewards = DefaultRewards()
	}
	c.Messages.fillDefaults()
}

// fillDefaults sets each empty message on its own
func (m *Messages) fillDefaults() {
	d := defaultMessages()
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&m.Welcome, d.Welcome},
		{&m.StageStart, d.StageStart},
		{&m.BossStage, d.BossStage},
		{&m.StageCleared, d.StageCleared},
		{&m.GameOver, d.GameOver},
		{&m.InvalidPath, d.InvalidPath},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

func defaultMessages() Messages {
	return Messages{
		Welcome:      "Draw one stroke from your position to an enemy.",
		StageStart:   "Stage %d begins.",
		BossStage:    "Stage %d: a boss appears!",
		StageCleared: "Stage %d cleared! Choose a reward.",
		GameOver:     "You fell on stage %d.",
		InvalidPath:  "Invalid path: %s",
	}
}

// ValidateGameConfig checks a configuration and reports every problem found
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	var errs error
	add := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf("config validation: "+format, args...))
	}

	if config.Name == "" {
		add("name is required")
	}
	if config.PlayerMaxHP < 1 {
		add("player_max_hp must be at least 1, got %d", config.PlayerMaxHP)
	}
	if g := config.StartingGold(); g < 0 {
		add("initial_gold must not be negative, got %d", g)
	}
	if b := config.StartingOneStrokeBonus(); b < 0 {
		add("initial_one_stroke_bonus must not be negative, got %d", b)
	}
	if config.RewardChoices < 1 {
		add("reward_choices must be at least 1, got %d", config.RewardChoices)
	}

	sp := config.Spawn
	for name, rate := range map[string]float64{
		"empty_rate": sp.EmptyRate, "attack_boost_rate": sp.AttackBoostRate,
		"hp_recovery_rate": sp.HPRecoveryRate, "gold_rate": sp.GoldRate,
	} {
		if rate < 0 || rate > 1 {
			add("spawn.%s must be within [0,1], got %g", name, rate)
		}
	}
	if sp.Sum() <= 0 {
		add("spawn rates must not all be zero")
	}
	for name, r := range map[string]IntRange{"attack_boost_range": sp.AttackBoostRange, "gold_range": sp.GoldRange} {
		if r.Min < 1 || r.Max < r.Min {
			add("spawn.%s must satisfy 1 <= min <= max, got %d..%d", name, r.Min, r.Max)
		}
	}

	if len(config.Stages) == 0 {
		add("at least one stage entry is required")
	}
	seen := make(map[int]bool)
	for i, st := range config.Stages {
		if seen[st.Stage] {
			add("stage %d is defined twice", st.Stage)
		}
		seen[st.Stage] = true
		if len(st.Enemies) < 1 || len(st.Enemies) > MaxEnemiesPerStage {
			add("stages[%d] must have 1 to %d enemies, got %d", i, MaxEnemiesPerStage, len(st.Enemies))
		}
		for j, e := range st.Enemies {
			if e.MaxHP < 1 {
				add("stages[%d].enemies[%d].max_hp must be at least 1", i, j)
			}
			if e.AttackPower < MinEnemyAttack || e.AttackPower > MaxEnemyAttack {
				add("stages[%d].enemies[%d].attack_power must be within [%d,%d], got %d",
					i, j, MinEnemyAttack, MaxEnemyAttack, e.AttackPower)
			}
			for k, a := range e.ActionPattern {
				if !a.Type.IsValid() {
					add("stages[%d].enemies[%d].action_pattern[%d] has unknown type %q", i, j, k, a.Type)
				}
				if a.Value < 0 || a.TurnCount < 1 {
					add("stages[%d].enemies[%d].action_pattern[%d] needs value >= 0 and turn_count >= 1", i, j, k)
				}
			}
		}
	}

	kinds := make(map[RewardKind]bool)
	for i, d := range config.Rewards {
		if kinds[d.Kind] {
			add("reward %s is defined twice", d.Kind)
		}
		kinds[d.Kind] = true
		if !d.Kind.IsValid() {
			add("rewards[%d] has unknown kind %q", i, d.Kind)
		}
		if len(d.Levels) == 0 {
			add("rewards[%d] (%s) needs at least one level", i, d.Kind)
		}
		for j, l := range d.Levels {
			if l.AppearanceWeight < 0 {
				add("rewards[%d].levels[%d].appearance_weight must not be negative", i, j)
			}
		}
	}

	for _, m := range []string{config.Messages.StageStart, config.Messages.BossStage, config.Messages.StageCleared, config.Messages.GameOver} {
		if m != "" && !strings.Contains(m, "%d") {
			add("stage messages must contain %%d for the stage number, got %q", m)
		}
	}
	return errs
}

// ParseGameConfig decodes a configuration. format is "json" or "yaml".
func ParseGameConfig(data []byte, format string) (*GameConfig, error) {
	var config GameConfig
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	config.ApplyDefaults()
	return &config, nil
}

// LoadGameConfig loads and validates a configuration file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" && strings.HasPrefix(filename, "configs/") {
		configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	config, err := ParseGameConfig(data, strings.TrimPrefix(filepath.Ext(configPath), "."))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultGameConfig returns the built-in run used when no file is available
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "default",
		Description: "Built-in ladder of slimes, knights and a boss every ten stages",
		Stages: []StageEntry{
			{Stage: 1, Enemies: []EnemyDescriptor{{MaxHP: 6, AttackPower: 1}}},
			{Stage: 2, Enemies: []EnemyDescriptor{{MaxHP: 6, AttackPower: 1}, {MaxHP: 8, AttackPower: 2}}},
			{Stage: 4, Enemies: []EnemyDescriptor{
				{MaxHP: 10, AttackPower: 2, ActionPattern: []ActionEntry{{Type: ActionAttack, Value: 1, TurnCount: 3}}},
				{MaxHP: 8, AttackPower: 2},
			}},
			{Stage: 7, Enemies: []EnemyDescriptor{
				{MaxHP: 12, AttackPower: 2, ActionPattern: []ActionEntry{{Type: ActionDisableHeal, Value: 2, TurnCount: 2}}},
				{MaxHP: 12, AttackPower: 3},
				{MaxHP: 8, AttackPower: 2, ActionPattern: []ActionEntry{{Type: ActionSpawnThorns, Value: 2, TurnCount: 2}}},
			}},
			{Stage: 10, Enemies: []EnemyDescriptor{{
				IsBoss: true, MaxHP: 40, AttackPower: 3,
				ActionPattern: []ActionEntry{
					{Type: ActionAttack, Value: 1, TurnCount: 2},
					{Type: ActionSpawnWalls, Value: 2, TurnCount: 1},
					{Type: ActionHealSelf, Value: 5, TurnCount: 2},
					{Type: ActionDecreaseAttack, Value: 1, TurnCount: 1},
				},
			}}},
			{Stage: 11, Enemies: []EnemyDescriptor{
				{MaxHP: 16, AttackPower: 3, ActionPattern: []ActionEntry{{Type: ActionDecreaseGold, Value: 1, TurnCount: 2}}},
				{MaxHP: 16, AttackPower: 3, ActionPattern: []ActionEntry{{Type: ActionDisableAttackBoost, Value: 2, TurnCount: 3}}},
			}},
		},
	}
	config.ApplyDefaults()
	return config
}
