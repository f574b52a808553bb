package utils

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"pasr-server/models"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

type AuditStore interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// Audit records an admin action. Failing to write the entry does not fail
// the action.
func Audit(ctx iris.Context, store AuditStore, action, resourceType string, resourceID uuid.UUID, before interface{}, after interface{}) {
	var beforeStr, afterStr string
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			beforeStr = string(b)
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			afterStr = string(a)
		}
	}

	entry := models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeJSON:   beforeStr,
		AfterJSON:    afterStr,
		IPAddress:    ClientIP(ctx),
	}
	if c := CurrentCustomer(ctx); c != nil {
		entry.ActorID = c.ID
		entry.ActorHandle = c.Username
	}
	if err := store.CreateAuditLog(ctx.Request().Context(), &entry); err != nil {
		golog.Errorf("audit %s %s %s: %v", action, resourceType, resourceID, err)
	}
}

// ClientIP is the address the client reports, for the audit trail only. It
// is not trustworthy and must not key any access decision.
func ClientIP(ctx iris.Context) string {
	if fwd := ctx.GetHeader("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	ip, _, err := net.SplitHostPort(ctx.Request().RemoteAddr)
	if err != nil {
		return ctx.Request().RemoteAddr
	}
	return ip
}
