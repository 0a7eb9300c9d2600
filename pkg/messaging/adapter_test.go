package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanBroker struct {
	ch      chan []byte
	subErr  error
	channel string
}

func (b *chanBroker) Publish(context.Context, string, interface{}) error { return nil }

func (b *chanBroker) Subscribe(_ context.Context, channel string) (<-chan []byte, error) {
	b.channel = channel
	return b.ch, b.subErr
}

func (b *chanBroker) Close() error { return nil }

func TestConsumeDeliversUntilClosed(t *testing.T) {
	b := &chanBroker{ch: make(chan []byte, 3)}
	b.ch <- []byte(`{"id":"1","type":"appointment.waitlisted","payload":{"appnt_id":7}}`)
	b.ch <- []byte(`not json`)
	b.ch <- []byte(`{"id":"2","type":"appointment.waitlisted","payload":{}}`)
	close(b.ch)

	var got []Message
	var errs []error
	err := Consume(context.Background(), b, "appointment.waitlisted", func(_ context.Context, m Message) error {
		got = append(got, m)
		if m.ID == "2" {
			return errors.New("handler failed")
		}
		return nil
	}, func(err error) { errs = append(errs, err) })

	require.NoError(t, err)
	assert.Equal(t, "appointment.waitlisted", b.channel)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"appnt_id":7}`, string(got[0].Payload))
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "failed to decode message")
	assert.EqualError(t, errs[1], "handler failed")
}

func TestConsumeSubscribeError(t *testing.T) {
	b := &chanBroker{subErr: errors.New("no redis")}
	err := Consume(context.Background(), b, "x", nil, nil)
	assert.ErrorContains(t, err, "failed to subscribe to x")
}

func TestConsumeStopsOnContext(t *testing.T) {
	b := &chanBroker{ch: make(chan []byte)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, Consume(ctx, b, "x", nil, nil))
}
