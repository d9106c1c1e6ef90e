package mykafka

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_NoBrokers(t *testing.T) {
	p := New(nil)
	_, ok := p.(NopPublisher)
	require.True(t, ok)
	require.NoError(t, p.PublishEvent(context.Background(), TopicCartEvents, "1", map[string]any{"type": "checkout"}))
	require.NoError(t, p.Close())
}

func TestNew_WithBrokers(t *testing.T) {
	p := New([]string{"localhost:9092"})
	prod, ok := p.(*Producer)
	require.True(t, ok)
	require.Equal(t, "localhost:9092", prod.writer.Addr.String())
	require.NoError(t, p.Close())
}

func TestPublishEvent_BadPayload(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	defer p.Close()

	err := p.PublishEvent(context.Background(), TopicUserEvents, "1", make(chan int))
	require.Error(t, err)
	require.Contains(t, err.Error(), "json.Marshal")
}

func TestNewProducer_FlushesEachEvent(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"})
	defer p.Close()

	require.Equal(t, 1, p.writer.BatchSize)
	require.Equal(t, batchTimeout, p.writer.BatchTimeout)
	require.Equal(t, writeTimeout, p.writer.WriteTimeout)
	require.False(t, p.writer.Async)
}

func TestPublishEvent_UnreachableBrokerReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	p := NewProducer([]string{addr})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = p.PublishEvent(ctx, TopicCartEvents, "1", map[string]any{"type": "cart_checked_out"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "write to cart_events failed")
}
