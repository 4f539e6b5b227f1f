package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"profitshare-backend/internal/domain"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Sink delivers a built notification somewhere.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n *domain.Notification) error
}

// DBSink stores notifications in the Notifications table.
type DBSink struct {
	DB *gorm.DB
}

func (s *DBSink) Name() string { return "db" }

func (s *DBSink) Deliver(ctx context.Context, n *domain.Notification) error {
	return s.DB.WithContext(ctx).Create(n).Error
}

const (
	inboxKeyPrefix = "notifications:inbox:"
	inboxMaxLen    = 100
	channelPrefix  = "notifications."
)

func InboxKey(investorID string) string {
	return inboxKeyPrefix + investorID
}

// RedisSink keeps a capped per-investor inbox list and publishes each
// notification on a pub/sub channel named after its type.
type RedisSink struct {
	Client *redis.Client
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, n *domain.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := InboxKey(n.InvestorID)
	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, b)
		pipe.LTrim(ctx, key, 0, inboxMaxLen-1)
		pipe.Publish(ctx, channelPrefix+n.Type, b)
		return nil
	})
	return err
}

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes notifications to notifications.<type>.<investor>.
type NATSSink struct {
	Conn Publisher
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Deliver(_ context.Context, n *domain.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.Conn.Publish(Subject(n.Type, n.InvestorID), b)
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// Subject maps a notification type and investor to a NATS subject. Investor ids
// are sanitised so they cannot introduce tokens or wildcards.
func Subject(notificationType, investorID string) string {
	return channelPrefix + notificationType + "." + subjectReplacer.Replace(investorID)
}

// ConnectNATS dials the NATS server used by NATSSink.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("profitshare-backend"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Error().Err(err).Msg("NATS disconnected with error")
			} else {
				log.Warn().Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info().Str("url", url).Msg("Connected to NATS")
	return nc, nil
}
