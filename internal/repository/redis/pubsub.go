package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdmissionsPubSub announces admission-affecting changes (ticket issued,
// ticket cancelled, scan) so the admin console can refresh live counts. A
// seat_freed message is also the waitlist promotion surface: the queue is
// position-tracking only, the person claims the freed seat through the
// ordinary ticket request path.
type AdmissionsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewAdmissionsPubSub(rdb *redis.Client) *AdmissionsPubSub {
	return &AdmissionsPubSub{
		rdb:     rdb,
		channel: ChannelAdmissions(),
	}
}

type admissionChangedMsg struct {
	Kind    string `json:"kind"`
	EventID int64  `json:"event_id"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *AdmissionsPubSub) Publish(ctx context.Context, eventID int64, kind string) error {
	msg := admissionChangedMsg{
		Kind:    kind,
		EventID: eventID,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *AdmissionsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, eventID int64, kind string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev admissionChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.EventID != 0 {
				handler(ctx, ev.EventID, ev.Kind)
			}
		}
	}
}
