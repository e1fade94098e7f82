package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Gateway sends a text message to one recipient
type Gateway interface {
	// Send delivers message to msisdn (international form, e.g. 250781234567)
	// and returns the provider's message id.
	Send(ctx context.Context, msisdn, message string) (string, error)

	// Name returns the name of the gateway implementation
	Name() string
}

// LogGateway writes messages to the log instead of sending them
type LogGateway struct {
	logger *logrus.Logger
}

// NewLogGateway creates the development gateway
func NewLogGateway(logger *logrus.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Send logs the message and returns a synthetic id
func (g *LogGateway) Send(ctx context.Context, msisdn, message string) (string, error) {
	id := fmt.Sprintf("dev-%d", time.Now().UnixNano())
	g.logger.WithFields(logrus.Fields{
		"msisdn":     msisdn,
		"message":    message,
		"message_id": id,
	}).Info("SMS (dev mode, not sent)")
	return id, nil
}

// Name returns the name of this SMS gateway
func (g *LogGateway) Name() string {
	return "log"
}
