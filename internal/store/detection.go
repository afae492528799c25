package store

import (
	"database/sql"
	"time"
)

// Detection records the gesture shown at one frame of a session.
type Detection struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	FrameIndex int       `json:"frame_index"`
	Gesture    string    `json:"gesture"`
	Fingers    int       `json:"fingers"`
	Tips       int       `json:"tips"`
	CreatedAt  time.Time `json:"created_at"`
}

// DetectionRepository provides operations for detections.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

// Create inserts a single detection and sets its ID.
func (r *DetectionRepository) Create(d *Detection) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO detections (session_id, frame_index, gesture, fingers, tips, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.SessionID, d.FrameIndex, d.Gesture, d.Fingers, d.Tips, d.CreatedAt,
	)
	if err != nil {
		return err
	}

	d.ID, err = result.LastInsertId()
	return err
}

// CreateBatch inserts detections in a single transaction.
func (r *DetectionRepository) CreateBatch(ds []*Detection) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO detections (session_id, frame_index, gesture, fingers, tips, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, d := range ds {
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		result, err := stmt.Exec(d.SessionID, d.FrameIndex, d.Gesture, d.Fingers, d.Tips, d.CreatedAt)
		if err != nil {
			return err
		}
		if d.ID, err = result.LastInsertId(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession retrieves a session's detections in frame order.
func (r *DetectionRepository) ListBySession(sessionID string) ([]*Detection, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, frame_index, gesture, fingers, tips, created_at
		 FROM detections WHERE session_id = ? ORDER BY frame_index, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d := &Detection{}
		if err := rows.Scan(&d.ID, &d.SessionID, &d.FrameIndex, &d.Gesture, &d.Fingers, &d.Tips, &d.CreatedAt); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}

// CountByGesture returns how many detections of each gesture label a
// session recorded.
func (r *DetectionRepository) CountByGesture(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT gesture, COUNT(*) FROM detections WHERE session_id = ? GROUP BY gesture`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var gesture string
		var n int
		if err := rows.Scan(&gesture, &n); err != nil {
			return nil, err
		}
		counts[gesture] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
