package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/middleware"
	"github.com/AnshRaj112/aura-backend/internal/services"
	"github.com/gorilla/websocket"
)

var notifyUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// NotificationsWebSocket streams like/comment/follow events to the connected
// user in real time. Authentication uses the same bearer token as the REST
// API, with a `?token=` fallback for browser WebSocket clients that cannot
// set headers.
func NotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
	}

	userID, err := services.VerifyToken(token, jwtSecret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := notifyUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Subscribe to local events for this user (fed by the Redis subscriber)
	eventsCh, unsubscribe := services.SubscribeNotifications(userID)
	defer unsubscribe()

	// Writer goroutine: forward events from the hub to this connection
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range eventsCh {
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}()

	// Reader loop: the client only ever sends pings, but reading is what
	// detects a dropped connection.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		select {
		case <-done:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
			_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		}
	}
}
