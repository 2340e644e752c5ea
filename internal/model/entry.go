package model

import "time"

// Entry — запись журнала (свободный текст: приёмки, заметки смены).
type Entry struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
