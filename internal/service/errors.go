package service

import (
	"errors"
	"net/http"

	"github.com/maheshrc27/postflow/internal/repository"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupportedFile      = errors.New("unsupported file type")
	ErrPostNotFound         = errors.New("post not found")
	ErrPostNotEditable      = errors.New("published posts cannot be edited")
	ErrPostScheduled        = errors.New("scheduled posts are published by the scheduler, clear scheduled_for first")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountExists        = repository.ErrAccountExists
	ErrNotificationNotFound = errors.New("notification not found")
)

var ErrorMap = map[error]int{
	ErrInvalidInput:         http.StatusBadRequest,
	ErrUnsupportedFile:      http.StatusBadRequest,
	ErrPostNotFound:         http.StatusNotFound,
	ErrPostNotEditable:      http.StatusConflict,
	ErrPostScheduled:        http.StatusConflict,
	ErrAccountNotFound:      http.StatusNotFound,
	ErrAccountExists:        http.StatusConflict,
	ErrNotificationNotFound: http.StatusNotFound,
}

// StatusCode finds the HTTP status for err, following wrapped errors.
func StatusCode(err error) int {
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code
		}
	}
	return http.StatusInternalServerError
}

func invalid(msg string) error {
	return &inputError{msg: msg}
}

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalidInput }
