package courses

import (
	"errors"
	"time"
)

type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	TeacherID   int64     `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrNotFound        = errors.New("course not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
