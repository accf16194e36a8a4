package utils

import (
	"log"
	"strings"
)

// LogEvent prints one standardized line per domain event. Keep message a
// short summary; never log credentials or full payloads.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] request_id=%s action=%s msg=%s", strings.ToUpper(module), req, action, message)
}
