package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"

	"citypulse/internal/models"
)

type NATSClient struct {
	conn stan.Conn
}

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
}

func NewNATSClient(cfg Config) (*NATSClient, error) {
	// Unique client ID so restarts do not collide with a stale session
	uniqueClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, uniqueClientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", uniqueClientID)

	return &NATSClient{conn: conn}, nil
}

func (nc *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishNearby emits a proximity notification intent. Fire-and-forget
// from the engine's perspective; failures are the caller's to log.
func (nc *NATSClient) PublishNearby(n models.NearbyNotification) error {
	return nc.Publish(models.SubjectNotificationNearby, n)
}

// PublishSeatsBooked sends a booked-seat adjustment to the authoritative
// store.
func (nc *NATSClient) PublishSeatsBooked(msg models.SeatsBookedMessage) error {
	return nc.Publish(models.SubjectSeatsBooked, msg)
}

// SubscribeSnapshots delivers every full-snapshot message from the feed.
// Undecodable messages are logged and dropped; the previous snapshot
// stays valid.
func (nc *NATSClient) SubscribeSnapshots(handler func(models.SnapshotMessage)) (stan.Subscription, error) {
	sub, err := nc.conn.Subscribe(models.SubjectEventsSnapshot, func(msg *stan.Msg) {
		var snapshot models.SnapshotMessage
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			slog.Error("Failed to decode snapshot message", "error", err)
			return
		}
		handler(snapshot)
	},
		stan.DurableName(models.SubjectEventsSnapshot+"-durable"),
		stan.AckWait(30*time.Second),
		stan.MaxInflight(1))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", models.SubjectEventsSnapshot, err)
	}

	slog.Info("Subscribed to snapshot feed", "subject", models.SubjectEventsSnapshot)
	return sub, nil
}

func (nc *NATSClient) Close() error {
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
