package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/messaging"
)

type failingBroker struct{}

func (failingBroker) Publish(context.Context, string, interface{}) error { return nil }

func (failingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("connection refused")
}

func (failingBroker) Close() error { return nil }

func TestServeWhileStopsOpsWhenConsumerFails(t *testing.T) {
	opsStopped := make(chan struct{})
	ops := func(ctx context.Context) error {
		<-ctx.Done()
		close(opsStopped)
		return nil
	}
	consume := func(ctx context.Context) error {
		return messaging.Consume(ctx, failingBroker{}, "appointment.waitlisted",
			func(context.Context, messaging.Message) error { return nil }, nil)
	}

	done := make(chan error, 1)
	go func() { done <- serveWhile(context.Background(), logger.Nop(), ops, consume) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "connection refused")
	case <-time.After(2 * time.Second):
		t.Fatal("serveWhile did not return after the consumer failed")
	}
	select {
	case <-opsStopped:
	default:
		t.Fatal("ops was not stopped")
	}
}

func TestServeWhileStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wait := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- serveWhile(ctx, logger.Nop(), wait, wait) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serveWhile did not return after cancel")
	}
}
