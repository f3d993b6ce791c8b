package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/rahul/campaigner/internal/planner"
)

// ResultsStore persists finished campaigns to sqlite. The plan header goes
// into campaigns; the full results payload is stored as JSON in
// campaign_results so downstream reporting can read it without knowing the
// stage types.
type ResultsStore struct {
	DB *sql.DB
}

// PlanRecord is one persisted campaign header.
type PlanRecord struct {
	PlanID    string `json:"plan_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

func NewResultsStore(dbPath string) (*ResultsStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			plan_id TEXT PRIMARY KEY,
			name TEXT,
			goal TEXT,
			status TEXT,
			error TEXT,
			created_at TEXT,
			saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS campaign_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id TEXT,
			payload TEXT,
			saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			return nil, err
		}
	}

	return &ResultsStore{DB: db}, nil
}

// SavePlan upserts the campaign header and appends the full results payload.
func (s *ResultsStore) SavePlan(view *planner.StatusView) error {
	payload, err := json.Marshal(view.Results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	query := `INSERT INTO campaigns (plan_id, name, goal, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(plan_id) DO UPDATE SET status = excluded.status, error = excluded.error`
	if _, err := s.DB.Exec(query, view.PlanID, view.Name, view.Goal, string(view.Status), view.Error, view.CreatedAt); err != nil {
		return err
	}

	_, err = s.DB.Exec(`INSERT INTO campaign_results (plan_id, payload) VALUES (?, ?)`, view.PlanID, string(payload))
	return err
}

// GetPlan returns the persisted header for one campaign.
func (s *ResultsStore) GetPlan(planID string) (*PlanRecord, error) {
	query := `SELECT plan_id, name, goal, status, error, created_at FROM campaigns WHERE plan_id = ?`
	var rec PlanRecord
	err := s.DB.QueryRow(query, planID).Scan(&rec.PlanID, &rec.Name, &rec.Goal, &rec.Status, &rec.Error, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetResults returns the latest persisted results payload for a campaign.
func (s *ResultsStore) GetResults(planID string) (json.RawMessage, error) {
	query := `SELECT payload FROM campaign_results WHERE plan_id = ? ORDER BY id DESC LIMIT 1`
	var payload string
	if err := s.DB.QueryRow(query, planID).Scan(&payload); err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

// ListPlans returns persisted campaign headers, newest first.
func (s *ResultsStore) ListPlans(limit int) ([]PlanRecord, error) {
	query := `SELECT plan_id, name, goal, status, error, created_at FROM campaigns ORDER BY saved_at DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PlanRecord
	for rows.Next() {
		var rec PlanRecord
		if err := rows.Scan(&rec.PlanID, &rec.Name, &rec.Goal, &rec.Status, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *ResultsStore) Close() error {
	return s.DB.Close()
}
