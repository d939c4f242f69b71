package services

import (
	"context"
	"encoding/json"
	"reflect"

	"dapp_payroll/models"
	"dapp_payroll/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AuditSalarySet      = "SALARY_SET"
	AuditSalaryUpdated  = "SALARY_UPDATED"
	AuditPayrollCreated = "PAYROLL_CREATED"
	AuditPayrollPaid    = "PAYROLL_PAID"
	AuditFundsDeposited = "FUNDS_DEPOSITED"
)

type AuditSink interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after interface{})
}

// AuditLogger writes to audit_logs. Failures are logged and swallowed.
type AuditLogger struct {
	DB *gorm.DB
}

func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{DB: db}
}

func (a *AuditLogger) Record(ctx context.Context, actorID, action, entityType, entityID string, before, after interface{}) {
	entry := models.AuditLog{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: marshalAudit(before),
		AfterJSON:  marshalAudit(after),
	}
	if err := a.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.Logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// marshalAudit stores nothing for a missing snapshot, including typed nil
// pointers.
func marshalAudit(v interface{}) string {
	if v == nil {
		return ""
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
