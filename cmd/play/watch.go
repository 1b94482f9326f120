package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"

	"github.com/wricardo/onestroke/game/engine"
)

// wsMessage mirrors the hub's wire format
type wsMessage struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
}

// watcher follows a server session over the websocket
type watcher struct {
	baseURL   string
	sessionID string
	notify    func()

	mu        sync.Mutex
	state     *engine.GameState
	log       []string
	connected bool
}

func newWatcher(baseURL, sessionID string, notify func()) *watcher {
	if notify == nil {
		notify = func() {}
	}
	return &watcher{baseURL: strings.TrimSuffix(baseURL, "/"), sessionID: sessionID, notify: notify}
}

// wsURL turns an http(s) server URL into the session's websocket URL
func wsURL(base, sessionID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchState loads the current state so the view is not empty until the
// first broadcast
func (w *watcher) fetchState(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.baseURL+"/api/sessions/"+url.PathEscape(w.sessionID)+"/state", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch state: %s", resp.Status)
	}
	var state engine.GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return fmt.Errorf("parse state: %w", err)
	}
	w.mu.Lock()
	w.state = &state
	w.mu.Unlock()
	w.notify()
	return nil
}

// run keeps a connection open until ctx is done, reconnecting with backoff
func (w *watcher) run(ctx context.Context) error {
	target, err := wsURL(w.baseURL, w.sessionID)
	if err != nil {
		return err
	}
	b := &backoff.Backoff{Min: 200 * time.Millisecond, Max: 10 * time.Second, Factor: 2, Jitter: true}

	for ctx.Err() == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
		if err != nil {
			w.addLog(fmt.Sprintf("connect failed: %v", err))
			select {
			case <-ctx.Done():
			case <-time.After(b.Duration()):
			}
			continue
		}
		b.Reset()
		w.setConnected(true)
		w.listen(ctx, conn)
		w.setConnected(false)
	}
	return ctx.Err()
}

func (w *watcher) listen(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				w.addLog(fmt.Sprintf("connection lost: %v", err))
			}
			return
		}
		w.handle(data)
	}
}

// handle applies one hub frame
func (w *watcher) handle(data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		w.addLog(fmt.Sprintf("bad message: %v", err))
		return
	}
	if msg.GameState != nil {
		w.mu.Lock()
		w.state = msg.GameState
		w.mu.Unlock()
	}
	if msg.Event != "" {
		var ev struct {
			Message string `json:"message"`
		}
		line := msg.Event
		if len(msg.Data) > 0 && json.Unmarshal(msg.Data, &ev) == nil && ev.Message != "" {
			line = ev.Message
		}
		w.addLog(line)
		return
	}
	w.notify()
}

func (w *watcher) addLog(line string) {
	w.mu.Lock()
	w.log = append(w.log, line)
	if len(w.log) > maxLogLines {
		w.log = w.log[len(w.log)-maxLogLines:]
	}
	w.mu.Unlock()
	w.notify()
}

func (w *watcher) setConnected(v bool) {
	w.mu.Lock()
	w.connected = v
	w.mu.Unlock()
	w.notify()
}

func (w *watcher) snapshot() (*engine.GameState, []string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, append([]string(nil), w.log...), w.connected
}

// render draws the spectator screen
func (w *watcher) render(s tcell.Screen) {
	s.Clear()
	state, lines, connected := w.snapshot()

	status, style := "disconnected", styleBad
	if connected {
		status, style = "live", styleGood
	}
	putText(s, 1, 0, fmt.Sprintf("Watching %s [%s]", w.sessionID, status), style)

	if state == nil || state.Board == nil || state.Player == nil {
		putText(s, 1, 2, "Waiting for game state...", styleDim)
		drawLog(s, 1, 4, lines)
		s.Show()
		return
	}

	y := drawHUD(s, 1, 2, state)
	var last []engine.Position
	if n := len(state.History); n > 0 {
		last = state.History[n-1].Path
	}
	drawBoard(s, 1, y, state, last)
	drawLog(s, 2+engine.BoardSize*cellWidth, y, lines)
	y += engine.BoardSize + 1
	y = drawEnemies(s, 1, y, state)
	if state.GameOver {
		putText(s, 1, y, fmt.Sprintf("GAME OVER on stage %d", state.Stage), styleBad)
		y += 2
	}
	putText(s, 1, y, state.Message, styleText)
	putText(s, 1, y+1, "q quits", styleDim)
	s.Show()
}
