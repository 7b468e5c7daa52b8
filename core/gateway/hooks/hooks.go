// Package hooks provides the validation hooks run on every inbound SATP step.
//
// Hooks let a deployment plug in validation, metrics and audit logic per step
// without modifying the protocol engine.
package hooks

import (
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/dto"
)

// DefaultHook accepts every message and logs it.
type DefaultHook struct{}

func NewDefaultHook() *DefaultHook {
	return &DefaultHook{}
}

func (h *DefaultHook) Validate(msg dto.Message) bool {
	log.Debugf("%s hook for session %s is OK", msg.Step(), msg.GetSession().SessionID)
	return true
}
