package kafka

import (
	"context"
	"testing"
	"time"

	"commission-tracker/internal/broker"

	kafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_ClosesOutWhenFetchStops(t *testing.T) {
	raw := make(chan kafka.Message, 1)
	out := make(chan *broker.Message, 1)

	raw <- kafka.Message{Topic: "orphans", Partition: 2, Offset: 7, Key: []byte("k"), Value: []byte("v")}
	close(raw)

	done := make(chan struct{})
	go func() {
		bridge(context.Background(), raw, out)
		close(done)
	}()

	msg, ok := <-out
	require.True(t, ok)
	assert.Equal(t, &broker.Message{Key: []byte("k"), Value: []byte("v"), Topic: "orphans", Partition: 2, Offset: 7}, msg)

	_, ok = <-out
	assert.False(t, ok)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bridge did not return")
	}
}

func TestBridge_StopsOnCancel(t *testing.T) {
	raw := make(chan kafka.Message)
	out := make(chan *broker.Message)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bridge(ctx, raw, out)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bridge did not return")
	}
	_, ok := <-out
	assert.False(t, ok)
}
