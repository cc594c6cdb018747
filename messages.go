package main

import "errors"

// rejectionMessage maps a validation error to the text shown to the user.
// ok is false for errors that are not validation rejections.
func rejectionMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, ErrEmptyTask):
		return "Task cannot be empty!", true
	case errors.Is(err, ErrMultilineTask):
		return "Task cannot span multiple lines!", true
	case errors.Is(err, ErrNoTasks):
		return "No tasks found!", true
	case errors.Is(err, ErrOutOfRange):
		return "Invalid task number!", true
	case errors.Is(err, ErrNoMatch):
		return "No matching tasks found!", true
	case errors.Is(err, ErrInvalidChoice):
		return "Invalid choice!", true
	case errors.Is(err, errNotANumber):
		return "Please enter a valid number!", true
	case errors.Is(err, ErrCancelled):
		return "Operation cancelled.", true
	}
	return "", false
}
