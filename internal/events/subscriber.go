package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gopkg.in/tomb.v2"
)

const (
	subscribeMethod   = "suix_subscribeEvent"
	unsubscribeMethod = "suix_unsubscribeEvent"
	writeTimeout      = 5 * time.Second
)

// Options configures a subscription.
type Options struct {
	URL     string
	Filter  Filter
	OnEvent func(Event)
	// OnError receives read and decode failures. Optional.
	OnError func(error)
	Dialer  *websocket.Dialer
	Logger  *zap.Logger
}

// Subscription is a live event stream. A severed connection ends the
// subscription; it is not re-established.
type Subscription struct {
	conn   *websocket.Conn
	opts   Options
	logger *zap.Logger
	t      tomb.Tomb

	mu sync.Mutex
	id json.RawMessage
}

type rpcMessage struct {
	ID     *int            `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
	Params *struct {
		Subscription json.RawMessage `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params,omitempty"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Subscribe opens the socket, sends the subscription request and starts
// delivering events to opts.OnEvent. Cancelling ctx has the same effect as
// Unsubscribe.
func Subscribe(ctx context.Context, opts Options) (*Subscription, error) {
	if opts.OnEvent == nil {
		return nil, errors.New("OnEvent callback is required")
	}
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, _, err := dialer.DialContext(ctx, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.URL, err)
	}
	req := rpcRequest{JSONRPC: "2.0", ID: 1, Method: subscribeMethod, Params: []any{opts.Filter}}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send subscription: %w", err)
	}

	s := &Subscription{conn: conn, opts: opts, logger: logger}
	// the watcher must be tracked before readLoop can exit
	s.t.Go(func() error {
		select {
		case <-ctx.Done():
			s.t.Kill(nil)
		case <-s.t.Dying():
		}
		s.close()
		return nil
	})
	s.t.Go(s.readLoop)
	logger.Info("event subscription opened", zap.String("url", opts.URL))
	return s, nil
}

// Unsubscribe closes the socket and waits for the read loop to exit.
func (s *Subscription) Unsubscribe() error {
	s.t.Kill(nil)
	return s.t.Wait()
}

// Done is closed once the subscription has ended for any reason.
func (s *Subscription) Done() <-chan struct{} {
	return s.t.Dead()
}

// Err returns the reason the subscription ended, nil after a clean unsubscribe.
func (s *Subscription) Err() error {
	return s.t.Err()
}

func (s *Subscription) close() {
	s.mu.Lock()
	id := s.id
	s.mu.Unlock()
	if len(id) > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		req := rpcRequest{JSONRPC: "2.0", ID: 2, Method: unsubscribeMethod, Params: []any{id}}
		if err := s.conn.WriteJSON(req); err != nil {
			s.logger.Debug("unsubscribe request failed", zap.Error(err))
		}
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
	s.conn.Close()
	s.logger.Info("event subscription closed")
}

func (s *Subscription) readLoop() error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.t.Dying():
				return nil
			default:
			}
			s.reportError(err)
			return fmt.Errorf("read event stream: %w", err)
		}

		var msg rpcMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reportError(fmt.Errorf("decode message: %w", err))
			continue
		}

		switch {
		case msg.Method == subscribeMethod && msg.Params != nil:
			var ev Event
			if err := json.Unmarshal(msg.Params.Result, &ev); err != nil {
				s.reportError(fmt.Errorf("decode event: %w", err))
				continue
			}
			s.opts.OnEvent(ev)
		case msg.ID != nil && *msg.ID == 1:
			if len(msg.Error) > 0 {
				err := fmt.Errorf("subscription rejected: %s", string(msg.Error))
				s.reportError(err)
				return err
			}
			s.mu.Lock()
			s.id = msg.Result
			s.mu.Unlock()
			s.logger.Debug("subscription confirmed", zap.ByteString("id", msg.Result))
		}
	}
}

func (s *Subscription) reportError(err error) {
	s.logger.Warn("event stream error", zap.Error(err))
	if s.opts.OnError != nil {
		s.opts.OnError(err)
	}
}
