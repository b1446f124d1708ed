package scoreclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hersh/blitztris/internal/game"
	"github.com/hersh/blitztris/internal/protocol"
)

const (
	requestTimeout = 5 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 1 << 20
	queueSize      = 8
)

// SubmittedMsg is sent once a finished game has been stored.
type SubmittedMsg struct {
	ID     string
	Result game.Result
}

// SubmitFailedMsg is sent when a finished game could not be stored.
type SubmitFailedMsg struct {
	Err error
}

// RenamedMsg is sent after a stored score's name was corrected.
type RenamedMsg struct {
	ID   string
	Name string
}

type RenameFailedMsg struct {
	Err error
}

// LeaderboardMsg carries the full standings, highest first.
type LeaderboardMsg struct {
	Scores []protocol.ScoreRecord
}

// DisconnectedMsg is sent when the leaderboard feed is lost.
type DisconnectedMsg struct {
	Err error
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("score service returned %d: %s", e.Code, e.Body)
}

// Sender receives the client's tea messages. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

type job func(ctx context.Context) tea.Msg

// Client talks to the score service. Submissions and renames run on a
// background worker so the game loop never waits on the network.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	mu      sync.Mutex
	program Sender
	conn    *websocket.Conn
	closed  bool

	jobs chan job
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Client for the service at baseURL and starts its worker.
func New(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
		jobs:    make(chan job, queueSize),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// SetProgram sets where results are delivered.
func (c *Client) SetProgram(p Sender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.program = p
}

func (c *Client) deliver(msg tea.Msg) {
	if msg == nil {
		return
	}
	c.mu.Lock()
	p := c.program
	c.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (c *Client) run() {
	defer c.wg.Done()
	for {
		select {
		case j := <-c.jobs:
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			msg := j(ctx)
			cancel()
			c.deliver(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Client) enqueue(j job) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.jobs <- j:
		return true
	default:
		c.log.Warn("score queue full, dropping request")
		return false
	}
}

// Report implements game.Reporter.
func (c *Client) Report(res game.Result) {
	c.Submit(res)
}

// Submit queues res for storage and returns immediately. The outcome
// arrives as SubmittedMsg or SubmitFailedMsg.
func (c *Client) Submit(res game.Result) {
	c.enqueue(func(ctx context.Context) tea.Msg {
		rec, err := c.create(ctx, res)
		if err != nil {
			c.log.Warn("submit score failed", zap.Error(err))
			return SubmitFailedMsg{Err: err}
		}
		c.log.Info("score submitted", zap.String("id", rec.ID), zap.Int("score", rec.Score))
		return SubmittedMsg{ID: rec.ID, Result: res}
	})
}

// Rename queues a name correction for the stored score id.
func (c *Client) Rename(id, name string) {
	c.enqueue(func(ctx context.Context) tea.Msg {
		if err := c.rename(ctx, id, name); err != nil {
			c.log.Warn("rename failed", zap.String("id", id), zap.Error(err))
			return RenameFailedMsg{Err: err}
		}
		return RenamedMsg{ID: id, Name: name}
	})
}

// --- HTTP ---

func (c *Client) create(ctx context.Context, res game.Result) (protocol.ScoreRecord, error) {
	score, level, date := res.Score, res.Level, res.Timestamp
	body := protocol.CreateScoreRequest{
		Name:  res.Name,
		Score: &score,
		Level: &level,
	}
	if !date.IsZero() {
		body.Date = &date
	}
	var rec protocol.ScoreRecord
	err := c.do(ctx, http.MethodPost, "/api/scores", body, http.StatusCreated, &rec)
	return rec, err
}

func (c *Client) rename(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPut, "/api/scores/"+url.PathEscape(id),
		protocol.RenameRequest{Name: name}, http.StatusOK, nil)
}

// Fetch returns the current standings.
func (c *Client) Fetch(ctx context.Context) ([]protocol.ScoreRecord, error) {
	var recs []protocol.ScoreRecord
	if err := c.do(ctx, http.MethodGet, "/api/scores", nil, http.StatusOK, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// FetchCmd wraps Fetch as a tea.Cmd.
func (c *Client) FetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		recs, err := c.Fetch(ctx)
		if err != nil {
			c.log.Warn("fetch scores failed", zap.Error(err))
			return nil
		}
		return LeaderboardMsg{Scores: recs}
	}
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, want int, out interface{}) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var e protocol.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Body: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// --- Leaderboard feed ---

func feedURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Subscribe opens the websocket feed. Every frame is delivered as a
// LeaderboardMsg; a DisconnectedMsg follows when the feed ends.
func (c *Client) Subscribe(ctx context.Context) error {
	u, err := feedURL(c.baseURL)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("client closed")
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readPump(conn)
	return nil
}

func (c *Client) readPump(conn *websocket.Conn) {
	var cause error
	defer func() {
		conn.Close()
		c.deliver(DisconnectedMsg{Err: cause})
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("leaderboard feed read error", zap.Error(err))
				cause = err
			}
			return
		}

		var env struct {
			Type    protocol.MessageType `json:"type"`
			Payload json.RawMessage      `json:"payload"`
		}
		if err := json.Unmarshal(message, &env); err != nil {
			c.log.Debug("leaderboard feed unmarshal error", zap.Error(err))
			continue
		}
		switch env.Type {
		case protocol.MsgLeaderboard:
			var payload protocol.LeaderboardPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				c.deliver(LeaderboardMsg{Scores: payload.Scores})
			}
		default:
			c.log.Debug("unknown feed message", zap.String("type", string(env.Type)))
		}
	}
}

// Close stops the worker and the feed. Queued requests that have not
// started are dropped.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
	c.wg.Wait()
}
