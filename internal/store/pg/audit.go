package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"flotanet.org/internal/audit"
)

var _ audit.AccessRecorder = (*Store)(nil)

// RecordAccess appends one row to user_logs. Extra fields go into a jsonb
// column so new middleware data never needs a migration.
func (s *Store) RecordAccess(ctx context.Context, rec audit.AccessRecord) error {
	extraJSON := []byte("{}")
	if len(rec.Extra) > 0 {
		b, err := json.Marshal(rec.Extra)
		if err != nil {
			return fmt.Errorf("marshal extra: %w", err)
		}
		extraJSON = b
	}
	_, err := s.db.ExecContext(ctx, `
		insert into user_logs
			(created_at, user_id, username, event, method, route, status,
			 response_time_ms, ip, host_header, user_agent, referer, request_id, extra)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, rec.CreatedAt, rec.UserID, nullIfEmpty(rec.Username), rec.Event, rec.Method,
		rec.Route, rec.Status, rec.ResponseTimeMS, nullIfEmpty(rec.IP),
		nullIfEmpty(rec.HostHeader), nullIfEmpty(rec.UserAgent),
		nullIfEmpty(rec.Referer), nullIfEmpty(rec.RequestID), extraJSON)
	return err
}
