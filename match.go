package main

import "strings"

// Match is a task found by a name search, with its 0-indexed position in the list
type Match struct {
	Index int
	Task  string
}

// Filter returns elements from slice that satisfy the predicate
func Filter[T any](slice []T, predicate func(T) bool) []T {
	var result []T
	for _, v := range slice {
		if predicate(v) {
			result = append(result, v)
		}
	}
	return result
}

// matchTasks finds every task containing query, ignoring case
func matchTasks(tasks []string, query string) []Match {
	needle := strings.ToLower(strings.TrimSpace(query))

	indexed := make([]Match, len(tasks))
	for i, task := range tasks {
		indexed[i] = Match{Index: i, Task: task}
	}

	return Filter(indexed, func(m Match) bool {
		return strings.Contains(strings.ToLower(m.Task), needle)
	})
}

func matchTexts(matches []Match) []string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Task
	}
	return texts
}
