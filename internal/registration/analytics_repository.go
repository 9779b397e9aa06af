package registration

import (
	"context"
	"time"

	"gymhub/internal/db"
)

type analyticsRepository struct {
	db db.DBTX
}

func NewAnalyticsRepository(db db.DBTX) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) StatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error) {
	query := `
SELECT
  TO_CHAR(DATE(registration_date), 'YYYY-MM-DD')  AS bucket,
  COUNT(*) FILTER (WHERE status = 'REGISTERED')   AS registered,
  COUNT(*) FILTER (WHERE status = 'ATTENDED')     AS attended,
  COUNT(*) FILTER (WHERE status = 'CANCELLED')    AS cancelled,
  COUNT(*) FILTER (WHERE status = 'NO_SHOW')      AS no_show
FROM class_registrations
WHERE registration_date BETWEEN $1 AND $2
GROUP BY DATE(registration_date)
ORDER BY bucket;
`
	var stats []StatsByDay
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *analyticsRepository) StatsByClass(ctx context.Context, from, to time.Time) ([]StatsByClass, error) {
	query := `
SELECT
  gc.id   AS gym_class_id,
  gc.name AS class_name,
  COUNT(cr.id) FILTER (WHERE cr.status = 'REGISTERED') AS registered,
  COUNT(cr.id) FILTER (WHERE cr.status = 'ATTENDED')   AS attended,
  COUNT(cr.id) FILTER (WHERE cr.status = 'CANCELLED')  AS cancelled,
  COUNT(cr.id) FILTER (WHERE cr.status = 'NO_SHOW')    AS no_show
FROM gym_classes gc
JOIN class_registrations cr ON cr.gym_class_id = gc.id
WHERE cr.registration_date BETWEEN $1 AND $2
GROUP BY gc.id, gc.name
ORDER BY gc.id;
`
	var stats []StatsByClass
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}
