package entity

import "time"

type Report struct {
	ID         string    `json:"id" db:"id"`
	DealID     string    `json:"deal_id" db:"deal_id"`
	ReporterID string    `json:"reporter_id" db:"reporter_id"`
	Reason     string    `json:"reason" db:"reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
