package planner

import "errors"

var (
	ErrNotFound     = errors.New("planner: record not found")
	ErrInvalidInput = errors.New("planner: invalid input")
)
