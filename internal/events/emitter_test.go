package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_WireShapes(t *testing.T) {
	tests := []struct {
		name string
		emit func(e *Emitter)
		want string
	}{
		{
			name: "progress",
			emit: func(e *Emitter) { e.Progress(context.Background(), "Fetching current time...") },
			want: `{"type":"status","data":{"status":"in_progress","description":"Fetching current time...","done":false,"hidden":false}}`,
		},
		{
			name: "error",
			emit: func(e *Emitter) { e.Error(context.Background(), "boom") },
			want: `{"type":"status","data":{"status":"error","description":"boom","done":true,"hidden":false}}`,
		},
		{
			name: "success without details",
			emit: func(e *Emitter) { e.Success(context.Background(), "done") },
			want: `{"type":"notification","data":{"type":"info","content":"done"}}`,
		},
		{
			name: "success with details",
			emit: func(e *Emitter) { e.Success(context.Background(), "done", map[string]string{"ip": "1.2.3.4"}) },
			want: `{"type":"notification","data":{"type":"info","content":"done","details":{"ip":"1.2.3.4"}}}`,
		},
		{
			name: "message",
			emit: func(e *Emitter) { e.Message(context.Background(), "Upcoming event: x") },
			want: `{"type":"chat:message:delta","data":{"content":"Upcoming event: x"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &Buffer{}
			tt.emit(NewEmitter(buf))

			got := buf.Events()
			require.Len(t, got, 1)
			raw, err := json.Marshal(got[0])
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestEmitter_NilSinkIsNoop(t *testing.T) {
	e := NewEmitter(nil)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		e.Progress(ctx, "a")
		e.Error(ctx, "b")
		e.Success(ctx, "c")
		e.Message(ctx, "d")
	})

	var nilEmitter *Emitter
	assert.NotPanics(t, func() { nilEmitter.Progress(ctx, "a") })
}

func TestEmitter_PreservesOrder(t *testing.T) {
	buf := &Buffer{}
	e := NewEmitter(buf)
	ctx := context.Background()

	e.Progress(ctx, "one")
	e.Message(ctx, "two")
	e.Success(ctx, "three")

	var texts []string
	for _, ev := range buf.Events() {
		texts = append(texts, ev.Text())
	}
	assert.Equal(t, []string{"one", "two", "three"}, texts)
}

func TestEmitter_SinkErrorDoesNotStopCaller(t *testing.T) {
	calls := 0
	sink := SinkFunc(func(context.Context, Event) error {
		calls++
		return errors.New("host gone")
	})
	e := NewEmitter(sink)

	e.Progress(context.Background(), "a")
	e.Error(context.Background(), "b")

	assert.Equal(t, 2, calls)
}

func TestTee(t *testing.T) {
	a, b := &Buffer{}, &Buffer{}
	failing := SinkFunc(func(context.Context, Event) error { return errors.New("nope") })

	err := Tee(a, nil, failing, b).Emit(context.Background(), MessageEvent("hi"))

	assert.EqualError(t, err, "nope")
	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestEvent_IsError(t *testing.T) {
	assert.True(t, ErrorEvent("x").IsError())
	assert.False(t, ProgressEvent("x").IsError())
	assert.False(t, SuccessEvent("x", nil).IsError())
}
