package audit

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/utils"
)

// LogRecorder writes admin override records to the application log as JSON
// lines keyed by a correlation id.
type LogRecorder struct{}

func (LogRecorder) Record(e domain.AuditEntry) {
	if e.CorrelationID == "" {
		e.CorrelationID = uuid.NewString()
	}
	body, err := json.Marshal(e)
	if err != nil {
		utils.LogEvent(e.CorrelationID, "audit", e.Action, fmt.Sprintf("marshal failed: %v", err))
		return
	}
	utils.LogEvent(e.CorrelationID, "audit", e.Action, string(body))
}
