package dto

import "time"

// AuditLogQuery filtros de GET /api/logs. Page empieza en 1.
type AuditLogQuery struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	UserID     string `query:"user_id"`
	EntityType string `query:"entity_type"`
}

// Normalize aplica valores por defecto (page 1, limit 50, máximo 200).
func (q *AuditLogQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
}

// AuditLogResponse registro de la bitácora.
type AuditLogResponse struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	UserEmail     string         `json:"user_email,omitempty"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	SourceAddress string         `json:"source_address,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AuditLogListResponse página de la bitácora.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}
