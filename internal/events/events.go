// Package events listens to the workflow websocket for module status updates
// and reload requests.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cristianoliveira/workbench/internal/logging"
	"github.com/gorilla/websocket"
)

// Message types sent by the server.
const (
	TypeModuleStatus   = "wfmodule-status"
	TypeReloadWorkflow = "reload-workflow"
)

// Event is a decoded websocket message.
type Event interface {
	eventType() string
}

// ModuleStatus reports a module's new status.
type ModuleStatus struct {
	ID       int
	Status   string
	ErrorMsg string
}

func (ModuleStatus) eventType() string { return TypeModuleStatus }

// ReloadWorkflow asks the client to reload the whole workflow.
type ReloadWorkflow struct{}

func (ReloadWorkflow) eventType() string { return TypeReloadWorkflow }

type wireMessage struct {
	Type     *string `json:"type"`
	ID       int     `json:"id"`
	Status   string  `json:"status"`
	ErrorMsg *string `json:"error_msg"`
}

// Decode parses one websocket frame. Frames without a type, or with a type
// the client does not handle, yield ok == false and no error.
func Decode(data []byte) (ev Event, ok bool, err error) {
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, false, fmt.Errorf("decode event: %w", err)
	}
	if msg.Type == nil {
		return nil, false, nil
	}
	switch *msg.Type {
	case TypeModuleStatus:
		st := ModuleStatus{ID: msg.ID, Status: msg.Status}
		if msg.ErrorMsg != nil {
			st.ErrorMsg = *msg.ErrorMsg
		}
		return st, true, nil
	case TypeReloadWorkflow:
		return ReloadWorkflow{}, true, nil
	default:
		return nil, false, nil
	}
}

// URL returns the websocket address of a workflow on the server at baseURL.
func URL(baseURL string, workflowID int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/workflows/" + strconv.Itoa(workflowID)
	u.RawQuery = ""
	return u.String(), nil
}

// Listener connects to workflow websockets.
type Listener struct {
	BaseURL string
	// Cookie is forwarded as the Cookie header so the server sees the session.
	Cookie string
	Dialer *websocket.Dialer
	Logger logging.Logger
}

// Listen connects to the websocket of workflowID and calls handle for every
// recognised event until ctx is done or the connection drops. A cancelled ctx
// returns nil. Reconnecting is left to the caller.
func (l *Listener) Listen(ctx context.Context, workflowID int, handle func(Event)) error {
	log := l.Logger
	if log == nil {
		log = logging.With("component", "events")
	}
	addr, err := URL(l.BaseURL, workflowID)
	if err != nil {
		return err
	}
	dialer := l.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	header := http.Header{}
	if l.Cookie != "" {
		header.Set("Cookie", l.Cookie)
	}

	conn, resp, err := dialer.DialContext(ctx, addr, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()
	log.Debug("websocket connected", "url", addr)

	stop := context.AfterFunc(ctx, func() {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read websocket: %w", err)
		}
		ev, ok, err := Decode(data)
		if err != nil {
			log.Warn("ignoring malformed event", "error", err)
			continue
		}
		if ok {
			handle(ev)
		}
	}
}

// ErrClosed is returned by Run once its context is done.
var ErrClosed = errors.New("listener closed")

// Backoff doubles a reconnect delay from Min up to Max.
type Backoff struct {
	Min, Max time.Duration
	current  time.Duration
}

// Next returns the delay before the next reconnect attempt.
func (b *Backoff) Next() time.Duration {
	if b.current == 0 {
		b.current = b.Min
	} else {
		b.current *= 2
	}
	if b.current > b.Max {
		b.current = b.Max
	}
	return b.current
}

// Reset starts over from Min after a healthy connection.
func (b *Backoff) Reset() { b.current = 0 }

// Run keeps listening, reconnecting with backoff between attempts, until ctx
// is done. Connection errors are passed to onError.
func (l *Listener) Run(ctx context.Context, workflowID int, handle func(Event), onError func(error)) error {
	b := Backoff{Min: time.Second, Max: 30 * time.Second}
	for {
		started := time.Now()
		err := l.Listen(ctx, workflowID, handle)
		if ctx.Err() != nil {
			return ErrClosed
		}
		if err != nil && onError != nil {
			onError(err)
		}
		if time.Since(started) > b.Max {
			b.Reset()
		}
		select {
		case <-ctx.Done():
			return ErrClosed
		case <-time.After(b.Next()):
		}
	}
}
