package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/onestroke/game/bot"
	"github.com/wricardo/onestroke/game/engine"
)

// SessionResponse is the session document returned by the REST API
type SessionResponse struct {
	ID         string            `json:"id"`
	ConfigName string            `json:"config_name"`
	Seed       int64             `json:"seed"`
	GameState  *engine.GameState `json:"game_state"`
}

// TurnResponse is the reply to a submitted stroke
type TurnResponse struct {
	engine.TurnResult
	GameState *engine.GameState `json:"game_state"`
}

type restartResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

// Client plays a single session against a running server
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) CreateSession(ctx context.Context, configName string, seed int64) (*engine.GameState, error) {
	req := map[string]interface{}{"seed": seed}
	if configName != "" {
		req["config_id"] = configName
	}

	var session SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume attaches the client to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*engine.GameState, error) {
	c.sessionID = sessionID
	return c.GetState(ctx)
}

func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) SubmitPath(ctx context.Context, path []engine.Position) (*TurnResponse, error) {
	var resp TurnResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/path"), map[string]interface{}{"path": path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ChooseReward(ctx context.Context, index int) (*engine.GameState, error) {
	var resp struct {
		GameState *engine.GameState `json:"game_state"`
	}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reward"), map[string]int{"index": index}, &resp); err != nil {
		return nil, err
	}
	return resp.GameState, nil
}

func (c *Client) Restart(ctx context.Context) (*engine.GameState, error) {
	var resp restartResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/restart"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

type remoteOptions struct {
	MaxTurns int
	Delay    time.Duration
	Verbose  bool
}

// playRemote drives a server session with the bot until game over or the
// turn limit, and reports the summary the same way as a local game
func playRemote(ctx context.Context, c *Client, state *engine.GameState, planner *bot.Planner, picker engine.RewardPicker, opts remoteOptions) (*engine.RunSummary, error) {
	summary := &engine.RunSummary{RunID: state.RunID}
	finish := func(s *engine.GameState) {
		summary.StageReached = s.Stage
		summary.GameOver = s.GameOver
		if s.Player != nil {
			summary.FinalHP = s.Player.CurrentHP
			summary.FinalGold = s.Player.Gold
		}
	}
	defer func() { finish(state) }()

	for !state.GameOver {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		switch state.Phase {
		case engine.PhaseRewardSelection:
			idx, err := picker.PickReward(ctx, state.PendingRewards, state)
			if err != nil {
				return summary, err
			}
			next, err := c.ChooseReward(ctx, idx)
			if err != nil {
				return summary, err
			}
			state = next
			summary.RewardsTaken++

		case engine.PhasePathDrawing:
			if opts.MaxTurns > 0 && summary.Turns >= opts.MaxTurns {
				return summary, engine.ErrTurnLimit
			}
			path, err := planner.NextPath(ctx, state)
			if err != nil {
				return summary, err
			}
			resp, err := c.SubmitPath(ctx, path)
			if err != nil {
				return summary, err
			}
			if !resp.Accepted {
				// our copy of the board is stale
				summary.RejectedPaths++
				if summary.RejectedPaths > 3 {
					return summary, fmt.Errorf("server keeps rejecting strokes: %s", resp.Reason)
				}
				if state, err = c.GetState(ctx); err != nil {
					return summary, err
				}
				continue
			}
			summary.Turns++
			if resp.Outcome != nil && resp.Outcome.OneStrokeBonus {
				summary.OneStrokeTurns++
			}
			state = resp.GameState
			if opts.Verbose {
				log.Info("Stroke executed", "session", c.sessionID, "stage", state.Stage,
					"length", len(path), "hp", state.Player.CurrentHP, "gold", state.Player.Gold)
			}

		default:
			return summary, fmt.Errorf("%w: remote session in %s", engine.ErrWrongPhase, state.Phase)
		}

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
	return summary, nil
}
