package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/database"
)

// Notification event types pushed to connected clients.
const (
	NotifyTypeLike     = "like"
	NotifyTypeComment  = "comment"
	NotifyTypeFollow   = "follow"
	NotifyTypeUnfollow = "unfollow"
)

// NotifyEvent is the payload broadcast over Redis and WebSocket when someone
// interacts with a user's memory or profile. UserID is the recipient; ActorID
// is who liked, commented or followed.
type NotifyEvent struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	ActorID       string    `json:"actor_id"`
	ActorUsername string    `json:"actor_username,omitempty"`
	MemoryID      string    `json:"memory_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

const notifyChannelPrefix = "notify:user:"

// notifyHub is a per-process registry of subscriber channels keyed by user id.
// It is fed by the shared Redis subscriber so events reach whichever instance
// holds the user's WebSocket connection.
type notifyHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan NotifyEvent]struct{}
}

var (
	hub          = &notifyHub{subs: make(map[string]map[chan NotifyEvent]struct{})}
	notifyOnce   sync.Once
)

// SubscribeNotifications registers a local listener for a user's events.
// The returned unsubscribe must be called when the connection closes.
func SubscribeNotifications(userID string) (<-chan NotifyEvent, func()) {
	ch := make(chan NotifyEvent, 16)

	hub.mu.Lock()
	if hub.subs[userID] == nil {
		hub.subs[userID] = make(map[chan NotifyEvent]struct{})
	}
	hub.subs[userID][ch] = struct{}{}
	hub.mu.Unlock()

	unsubscribe := func() {
		hub.mu.Lock()
		if set, ok := hub.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(hub.subs, userID)
			}
		}
		hub.mu.Unlock()
		close(ch)
	}
	return ch, unsubscribe
}

func fanOutNotification(evt NotifyEvent) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for ch := range hub.subs[evt.UserID] {
		// Non-blocking best-effort send; a slow consumer drops events
		// rather than stalling the subscriber loop.
		select {
		case ch <- evt:
		default:
		}
	}
}

// PublishNotification publishes an event to Redis asynchronously.
// Fire-and-forget: the interaction that triggered the event has already
// succeeded, so delivery failures are logged and swallowed.
func PublishNotification(evt NotifyEvent) {
	go func(e NotifyEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}
		data, err := json.Marshal(e)
		if err != nil {
			return
		}

		if err := database.RedisClient.Publish(ctx, notifyChannelPrefix+e.UserID, data).Err(); err != nil {
			log.Printf("failed to publish notification: %v", err)
		}
	}(evt)
}

// StartNotifySubscriber ensures a single shared Redis listener per instance.
func StartNotifySubscriber(ctx context.Context) {
	notifyOnce.Do(func() {
		go runNotifySubscriber(ctx)
	})
}

func runNotifySubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; notify subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, notifyChannelPrefix+"*")
			defer pubsub.Close()

			log.Println("✅ Notification Redis subscriber started (pattern: notify:user:*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var evt NotifyEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					log.Printf("failed to unmarshal notification: %v", err)
					continue
				}

				fanOutNotification(evt)
			}
		}()
	}
}
