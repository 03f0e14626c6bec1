package handlers

import (
	"log"
)

// logAuditError is a helper to log audit service errors without failing the request
func logAuditError(operation string, err error) {
	if err != nil {
		log.Printf("AUDIT ERROR [%s]: %v", operation, err)
	}
}
