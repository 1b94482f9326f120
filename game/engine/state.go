package engine

import "time"

// GameState is the complete, serializable state of a run
type GameState struct {
	RunID          string             `json:"run_id"`
	ConfigName     string             `json:"config_name"`
	Seed           int64              `json:"seed"`
	Stage          int                `json:"stage"`
	IsBossStage    bool               `json:"is_boss_stage"`
	Phase          Phase              `json:"phase"`
	Turn           int                `json:"turn"`
	StageTurn      int                `json:"stage_turn"`
	Player         *Player            `json:"player"`
	Board          *Board             `json:"board"`
	Spawn          SpawnConfig        `json:"spawn"`
	RewardLevels   map[RewardKind]int `json:"reward_levels"`
	PendingRewards []RewardOffer      `json:"pending_rewards,omitempty"`
	History        []TurnRecord       `json:"history"`
	Message        string             `json:"message"`
	GameOver       bool               `json:"game_over"`
	StartedAt      time.Time          `json:"started_at"`
}

// Clone returns a deep copy that stays valid after the engine moves on.
// Turn records are never modified once appended, so their inner slices are
// shared.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	if s.Player != nil {
		c.Player = s.Player.Clone()
	}
	if s.Board != nil {
		c.Board = s.Board.Clone()
	}
	if s.RewardLevels != nil {
		c.RewardLevels = make(map[RewardKind]int, len(s.RewardLevels))
		for k, v := range s.RewardLevels {
			c.RewardLevels[k] = v
		}
	}
	if s.PendingRewards != nil {
		c.PendingRewards = append([]RewardOffer(nil), s.PendingRewards...)
	}
	if s.History != nil {
		c.History = append([]TurnRecord(nil), s.History...)
	}
	return &c
}

// TurnRecord summarizes one executed stroke
type TurnRecord struct {
	Turn           int            `json:"turn"`
	Stage          int            `json:"stage"`
	Path           []Position     `json:"path"`
	AttackPower    int            `json:"attack_power"`
	OneStrokeBonus bool           `json:"one_stroke_bonus,omitempty"`
	Defeated       []EnemyID      `json:"defeated,omitempty"`
	HPBefore       int            `json:"hp_before"`
	HPAfter        int            `json:"hp_after"`
	GoldBefore     int            `json:"gold_before"`
	GoldAfter      int            `json:"gold_after"`
	EnemyActions   []ActionReport `json:"enemy_actions,omitempty"`
	StageCleared   bool           `json:"stage_cleared,omitempty"`
	GameOver       bool           `json:"game_over,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// TurnResult is returned by SubmitPath. A rejected path is reported with
// Accepted false and the reason; it is not an error.
type TurnResult struct {
	Accepted     bool           `json:"accepted"`
	Reason       string         `json:"reason,omitempty"`
	Outcome      *PathOutcome   `json:"outcome,omitempty"`
	EnemyActions []ActionReport `json:"enemy_actions,omitempty"`
	StageCleared bool           `json:"stage_cleared"`
	GameOver     bool           `json:"game_over"`
	Rewards      []RewardOffer  `json:"rewards,omitempty"`
	Phase        Phase          `json:"phase"`
	Stage        int            `json:"stage"`
	Message      string         `json:"message"`
}

// RewardResult is returned by ChooseReward
type RewardResult struct {
	Applied RewardOffer `json:"applied"`
	Stage   int         `json:"stage"`
	Phase   Phase       `json:"phase"`
	Message string      `json:"message"`
}

// CellInfo describes one board cell for clients
type CellInfo struct {
	Position         Position     `json:"position"`
	Tile             *Tile        `json:"tile"`
	IsPlayer         bool         `json:"is_player"`
	Enemy            *Enemy       `json:"enemy,omitempty"`
	NextAction       *ActionEntry `json:"next_action,omitempty"`
	TurnsUntilAction int          `json:"turns_until_action,omitempty"`
}
