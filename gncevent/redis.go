// Copyright (C) 2019  David N. Cohen

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package gncevent

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"

	"src.d10.dev/ledgercore/guid"
)

// wireEvent is the JSON shape published on the Redis channel; Kind is
// carried as its String() form so a non-Go subscriber can read it.
type wireEvent struct {
	GUID   string `json:"guid"`
	Entity string `json:"entity"`
	Kind   string `json:"kind"`
}

// RedisBus publishes events to a single Redis pub/sub channel, for
// books shared across processes (e.g. a ledger daemon and a reporting
// process watching the same book).
type RedisBus struct {
	client  *redis.Client
	channel string

	mu      sync.Mutex
	suspend int
}

func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	return &RedisBus{client: client, channel: channel}
}

func (this *RedisBus) GenerateEvent(id guid.GUID, entity guid.EntityType, kind Kind) {
	this.mu.Lock()
	suspended := this.suspend > 0
	this.mu.Unlock()
	if suspended {
		return
	}
	payload, err := json.Marshal(wireEvent{GUID: id.String(), Entity: string(entity), Kind: kind.String()})
	if err != nil {
		return
	}
	this.client.Publish(context.Background(), this.channel, payload)
}

func (this *RedisBus) Suspend() {
	this.mu.Lock()
	this.suspend++
	this.mu.Unlock()
}

func (this *RedisBus) Resume() {
	this.mu.Lock()
	if this.suspend > 0 {
		this.suspend--
	}
	this.mu.Unlock()
}

// Listen runs until ctx is cancelled, decoding each published message
// and delivering it to fn. Grounded on the pack's
// conn.Cache.Subscribe/pubsub.Channel() pattern for consuming a Redis
// pub/sub stream.
func (this *RedisBus) Listen(ctx context.Context, fn func(Event)) error {
	pubsub := this.client.Subscribe(ctx, this.channel)
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var we wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &we); err != nil {
				continue
			}
			id, err := guid.Parse(we.GUID)
			if err != nil {
				continue
			}
			var kind Kind
			switch we.Kind {
			case "CREATE":
				kind = CREATE
			case "MODIFY":
				kind = MODIFY
			case "DESTROY":
				kind = DESTROY
			}
			fn(Event{GUID: id, Entity: guid.EntityType(we.Entity), Kind: kind})
		}
	}
}
