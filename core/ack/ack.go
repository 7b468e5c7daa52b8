// Package ack builds the acknowledgments returned by every step handler.
package ack

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/dto"
)

// OK returns a successful acknowledgment.
func OK(requestID, message string) *dto.Ack {
	return &dto.Ack{
		Status:    dto.AckStatusOK,
		RequestID: requestID,
		Message:   message,
	}
}

// Error returns an error acknowledgment with the message "<context> <err>".
func Error(requestID, context string, err error) *dto.Ack {
	log.WithField("request_id", requestID).Errorf("%s: %v", context, err)
	return &dto.Ack{
		Status:    dto.AckStatusError,
		RequestID: requestID,
		Message:   fmt.Sprintf("%s %v", context, err),
	}
}

// Invalid returns the error acknowledgment for a message rejected by validation.
func Invalid(requestID string, step dto.Step) *dto.Ack {
	log.WithField("request_id", requestID).Warnf("%s request is invalid", step)
	return &dto.Ack{
		Status:    dto.AckStatusError,
		RequestID: requestID,
		Message:   fmt.Sprintf("Error: The %s request is invalid", step),
	}
}

// Accepted returns the acknowledgment sent back once a step was persisted and
// its follow-up (if any) scheduled.
func Accepted(requestID string, step dto.Step) *dto.Ack {
	return OK(requestID, fmt.Sprintf("Ack of the %s request", step))
}
