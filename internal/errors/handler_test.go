package errors

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	kind string
	msg  string
}

// recordingOutput is a ColorOutput that remembers every call.
type recordingOutput struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *recordingOutput) record(kind string, msgs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := ""
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	r.calls = append(r.calls, recordedCall{kind: kind, msg: msg})
}

func (r *recordingOutput) Error(msgs ...string)   { r.record("error", msgs) }
func (r *recordingOutput) Warning(msgs ...string) { r.record("warning", msgs) }
func (r *recordingOutput) Info(msgs ...string)    { r.record("info", msgs) }
func (r *recordingOutput) Success(msgs ...string) { r.record("success", msgs) }

func (r *recordingOutput) last() recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return recordedCall{}
	}
	return r.calls[len(r.calls)-1]
}

func TestCLIHandlerRoutesByKind(t *testing.T) {
	tests := []struct {
		name string
		call func(h *CLIHandler)
		want recordedCall
	}{
		{"error", func(h *CLIHandler) { h.Error("workflow not found") }, recordedCall{"error", "workflow not found"}},
		{"warning", func(h *CLIHandler) { h.Warning("cache disabled") }, recordedCall{"warning", "cache disabled"}},
		{"info", func(h *CLIHandler) { h.Info("120 rows") }, recordedCall{"info", "120 rows"}},
		{"success", func(h *CLIHandler) { h.Success("renamed") }, recordedCall{"success", "renamed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &recordingOutput{}
			tt.call(NewCLIHandler(out))
			assert.Equal(t, tt.want, out.last())
		})
	}
}

func TestCLIHandlerErrorWhenAlreadyHandling(t *testing.T) {
	out := &recordingOutput{}
	handler := NewCLIHandler(out)

	handler.inHandling = true
	handler.Error("nested")

	assert.Equal(t, recordedCall{"error", "nested"}, out.last())
	assert.True(t, handler.inHandling, "fast path leaves the flag alone")

	handler.inHandling = false
	handler.Error("normal")
	assert.False(t, handler.inHandling)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "request cancelled", Describe(fmt.Errorf("load rows: %w", context.Canceled)))
	assert.Contains(t, Describe(fmt.Errorf("render: %w", context.DeadlineExceeded)), "request timed out")
	assert.Equal(t, "boom", Describe(fmt.Errorf("boom")))
}

func TestReport(t *testing.T) {
	out := &recordingOutput{}
	handler := NewCLIHandler(out)

	Report(handler, nil)
	assert.Empty(t, out.calls)

	Report(handler, fmt.Errorf("server returned 500"))
	assert.Equal(t, recordedCall{"error", "server returned 500"}, out.last())
}

func TestTUIHandlerStoresAndForwards(t *testing.T) {
	var got []Message
	handler := NewTUIHandler(func(msg Message) { got = append(got, msg) })

	handler.Error("error 1")
	handler.Warning("warning 2")
	handler.Info("info 3")
	handler.Success("success 4")

	require.Len(t, got, 4)
	all := handler.GetAll()
	require.Len(t, all, 4)
	for i, want := range []MessageType{MessageTypeError, MessageTypeWarning, MessageTypeInfo, MessageTypeSuccess} {
		assert.Equal(t, want, all[i].Type)
		assert.Equal(t, got[i], all[i])
		assert.False(t, all[i].Timestamp.IsZero())
	}

	latest, ok := handler.GetLatest()
	require.True(t, ok)
	assert.Equal(t, "success 4", latest.Text)

	all[0].Text = "modified"
	assert.Equal(t, "error 1", handler.GetAll()[0].Text, "GetAll returns a copy")
}

func TestTUIHandlerCallbackCanReadHandler(t *testing.T) {
	var handler *TUIHandler
	var seen Message
	handler = NewTUIHandler(func(Message) {
		seen, _ = handler.GetLatest()
	})

	handler.Info("loaded")
	assert.Equal(t, "loaded", seen.Text)
}

func TestTUIHandlerClear(t *testing.T) {
	handler := NewTUIHandler(nil)
	handler.Error("error 1")
	handler.Clear()

	assert.Empty(t, handler.GetAll())
	_, ok := handler.GetLatest()
	assert.False(t, ok)
}

func TestTUIHandlerKeepsBoundedHistory(t *testing.T) {
	handler := NewTUIHandler(nil)
	for i := 0; i < DefaultHistory+5; i++ {
		handler.Info(fmt.Sprintf("msg %d", i))
	}

	all := handler.GetAll()
	require.Len(t, all, DefaultHistory)
	assert.Equal(t, "msg 5", all[0].Text)
	assert.Equal(t, fmt.Sprintf("msg %d", DefaultHistory+4), all[len(all)-1].Text)
}

func TestTUIHandlerCurrentExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	handler := NewTUIHandler(nil)
	handler.now = func() time.Time { return now }

	_, ok := handler.Current(time.Second)
	assert.False(t, ok)

	handler.Warning("retrying")
	msg, ok := handler.Current(5 * time.Second)
	require.True(t, ok)
	assert.Equal(t, "retrying", msg.Text)

	now = now.Add(6 * time.Second)
	_, ok = handler.Current(5 * time.Second)
	assert.False(t, ok)
}

func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "error", MessageTypeError.String())
	assert.Equal(t, "warning", MessageTypeWarning.String())
	assert.Equal(t, "info", MessageTypeInfo.String())
	assert.Equal(t, "success", MessageTypeSuccess.String())
}

func TestTUIHandlerConcurrentAccess(t *testing.T) {
	handler := NewTUIHandler(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				handler.Info(fmt.Sprintf("goroutine %d message %d", n, j))
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = handler.GetAll()
			_, _ = handler.GetLatest()
		}()
	}
	wg.Wait()

	assert.Len(t, handler.GetAll(), DefaultHistory)
}
