package main

import (
	"errors"
	"strings"
)

var (
	ErrEmptyTask     = errors.New("task is empty")
	ErrMultilineTask = errors.New("task contains a line break")
)

// normalizeTask trims text and checks it can be stored as a single line
func normalizeTask(text string) (string, error) {
	task := strings.TrimSpace(text)

	if task == "" {
		return "", ErrEmptyTask
	}

	if strings.ContainsAny(task, "\r\n") {
		return "", ErrMultilineTask
	}

	return task, nil
}

// IsAffirmative reports whether a confirmation answer is an explicit yes
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
