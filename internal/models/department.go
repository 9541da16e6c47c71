package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Specialty is a sub-discipline within a department.
type Specialty struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SpecialtyList is stored as a single JSONB column and rewritten in full on
// every mutation; specialties have no document of their own.
type SpecialtyList []Specialty

// Value marshals the list to JSON for persistence.
func (l SpecialtyList) Value() (driver.Value, error) {
	if l == nil {
		l = SpecialtyList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal specialties: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the list.
func (l *SpecialtyList) Scan(value interface{}) error {
	if value == nil {
		*l = SpecialtyList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for SpecialtyList", value)
	}
	if len(data) == 0 {
		*l = SpecialtyList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal specialties: %w", err)
	}
	return nil
}

// Department groups people and carries an ordered specialty taxonomy.
type Department struct {
	ID          string        `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Specialties SpecialtyList `db:"specialties" json:"specialties"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}
