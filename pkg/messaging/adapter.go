package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler processes one decoded message.
type Handler func(ctx context.Context, msg Message) error

// Consume subscribes to channel and feeds every message to handler until ctx
// is done or the subscription closes. Handler and decode errors go to onErr
// and do not stop the loop.
func Consume(ctx context.Context, broker Broker, channel string, handler Handler, onErr func(error)) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgChan:
			if !ok {
				return nil
			}
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				if onErr != nil {
					onErr(fmt.Errorf("failed to decode message: %w", err))
				}
				continue
			}
			if err := handler(ctx, msg); err != nil && onErr != nil {
				onErr(err)
			}
		}
	}
}
