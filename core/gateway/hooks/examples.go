package hooks

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/dto"
)

// MetricsHook counts the messages received per step.
type MetricsHook struct {
	mu        sync.Mutex
	counts    map[dto.Step]uint64
	startTime time.Time
}

func NewMetricsHook() *MetricsHook {
	return &MetricsHook{
		counts:    make(map[dto.Step]uint64),
		startTime: time.Now(),
	}
}

func (m *MetricsHook) Validate(msg dto.Message) bool {
	m.mu.Lock()
	m.counts[msg.Step()]++
	count := m.counts[msg.Step()]
	m.mu.Unlock()

	log.WithFields(log.Fields{
		"step":   msg.Step().String(),
		"count":  count,
		"uptime": time.Since(m.startTime),
	}).Debug("Metrics: step received")
	return true
}

// Count returns how many messages of step were seen.
func (m *MetricsHook) Count(step dto.Step) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[step]
}

// SessionHook rejects session-scoped messages that carry no session id.
type SessionHook struct{}

func NewSessionHook() *SessionHook {
	return &SessionHook{}
}

func (SessionHook) Validate(msg dto.Message) bool {
	switch msg.Step() {
	case dto.StepTransferProposalClaims, dto.StepTransferProposalReceipt:
		return true
	}
	if msg.GetSession().SessionID == "" {
		log.Errorf("%s without session id", msg.Step())
		return false
	}
	return true
}

// AuditHook writes one audit line per received message.
type AuditHook struct {
	gateway string
}

func NewAuditHook(gateway string) *AuditHook {
	return &AuditHook{gateway: gateway}
}

func (a *AuditHook) Validate(msg dto.Message) bool {
	s := msg.GetSession()
	auditMsg := fmt.Sprintf("[AUDIT] %s - Gateway: %s, Session: %s, Asset: %s, Time: %s",
		msg.Step(), a.gateway, s.SessionID, s.AssetID, time.Now().Format(time.RFC3339))

	log.WithField("audit", true).Info(auditMsg)
	return true
}
