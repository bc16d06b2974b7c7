package kafka

import (
	"errors"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrConsumerClosed = errors.New("kafka consumer is closed")
	ErrEmptyTopic     = errors.New("topic cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
	ErrNilHandler     = errors.New("message handler cannot be nil")
)

// ShouldRetry reports whether a delivery error is transient. Permanent
// errors (bad message, auth, unknown topic) go straight to the DLQ.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())

	permanent := []string{
		"message too large",
		"invalid message",
		"unknown topic",
		"unauthorized",
		"authentication",
		"sasl",
	}
	for _, p := range permanent {
		if strings.Contains(msg, p) {
			return false
		}
	}

	transient := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"leader not available",
		"not leader for partition",
		"request timed out",
		"temporary",
		"eof",
	}
	for _, t := range transient {
		if strings.Contains(msg, t) {
			return true
		}
	}

	// Unknown errors get one more chance.
	return true
}
