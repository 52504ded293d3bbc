// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records state changes to persisted opportunities.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogReconciliation logs a deactivate-then-repopulate pass.
func (al *AuditLogger) LogReconciliation(deactivated int64, upserted, failed int, committed bool, at time.Time) {
	entry := al.WithFields(logrus.Fields{
		"deactivated": deactivated,
		"upserted":    upserted,
		"failed":      failed,
		"committed":   committed,
		"timestamp":   at.Unix(),
	})
	if !committed || failed > 0 {
		entry.Warn("Opportunity reconciliation incomplete")
		return
	}
	entry.Info("Opportunity reconciliation committed")
}

// LogUpsert logs a single opportunity write outside a reconciliation pass.
func (al *AuditLogger) LogUpsert(symbol string, upserted, failed int) {
	al.WithFields(logrus.Fields{
		"symbol":   symbol,
		"upserted": upserted,
		"failed":   failed,
	}).Info("Opportunities upserted")
}

// LogConfigLoaded logs effective scan settings at startup.
func (al *AuditLogger) LogConfigLoaded(environment string, generations []string, minScore float64, persist bool) {
	al.WithFields(logrus.Fields{
		"environment": environment,
		"generations": generations,
		"min_score":   minScore,
		"persist":     persist,
	}).Info("Scanner configuration loaded")
}
