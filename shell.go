package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const menuWidth = 40

var errNotANumber = errors.New("not a number")

var menuOptions = []string{
	"View all tasks",
	"Add a new task",
	"Remove task by number",
	"Remove task by name",
	"Insert task at position",
	"Clear all tasks",
	"Exit",
}

// Shell is the numbered menu loop driving a Store over line-based input
type Shell struct {
	store  *Store
	in     *lineReader
	out    io.Writer
	styled bool
}

type ShellOption func(*Shell)

// WithStyle enables lipgloss styling of menu and outcome messages
func WithStyle(enabled bool) ShellOption {
	return func(sh *Shell) {
		sh.styled = enabled
	}
}

func NewShell(store *Store, in io.Reader, out io.Writer, opts ...ShellOption) *Shell {
	sh := &Shell{store: store, in: newLineReader(in), out: out}
	for _, opt := range opts {
		opt(sh)
	}
	return sh
}

// Run shows the menu and handles one action at a time until the user exits,
// input ends, or ctx is cancelled
func (sh *Shell) Run(ctx context.Context) error {
	sh.println("Welcome to To-Do List Manager!")

	for {
		sh.showMenu()

		choice, err := sh.prompt(ctx, "\nEnter your choice (1-7): ")
		if err != nil {
			return sh.finish(err)
		}

		if quit := sh.dispatch(ctx, strings.TrimSpace(choice)); quit {
			return nil
		}
	}
}

// finish turns a prompt error into the matching farewell
func (sh *Shell) finish(err error) error {
	switch {
	case errors.Is(err, errInterrupted):
		sh.println("\n\nProgram interrupted. Goodbye!")
		return nil
	case errors.Is(err, io.EOF):
		sh.println("\nThank you for using To-Do List Manager!")
		return nil
	}
	return err
}

func (sh *Shell) dispatch(ctx context.Context, choice string) (quit bool) {
	defer func() {
		if r := recover(); r != nil {
			sh.println(sh.style(dangerStyle, fmt.Sprintf("An unexpected error occurred: %v", r)))
			quit = false
		}
	}()

	var err error

	switch choice {
	case "1":
		sh.viewTasks()
	case "2":
		err = sh.addTask(ctx)
	case "3":
		err = sh.removeTask(ctx)
	case "4":
		err = sh.removeTaskByName(ctx)
	case "5":
		err = sh.insertTask(ctx)
	case "6":
		err = sh.clearAllTasks(ctx)
	case "7":
		sh.println("Thank you for using To-Do List Manager!")
		return true
	default:
		sh.println(sh.style(warningStyle, "Invalid choice! Please enter a number between 1-7."))
	}

	if err == nil {
		return false
	}

	if errors.Is(err, errInterrupted) || errors.Is(err, io.EOF) {
		sh.finish(err)
		return true
	}

	sh.println(sh.style(dangerStyle, fmt.Sprintf("An unexpected error occurred: %v", err)))
	return false
}

func (sh *Shell) showMenu() {
	rule := sh.style(ruleStyle, strings.Repeat("=", menuWidth))
	title := sh.style(titleStyle, "       TO-DO LIST MANAGER")

	sh.println("\n" + rule)
	sh.println(title)
	sh.println(rule)
	for i, option := range menuOptions {
		sh.println(fmt.Sprintf("%s %s", sh.style(optionKeyStyle, fmt.Sprintf("%d.", i+1)), option))
	}
	sh.println(rule)
}

func (sh *Shell) viewTasks() {
	tasks := sh.store.Tasks()

	if len(tasks) == 0 {
		sh.println("No tasks found!")
		return
	}

	sh.println("\n" + sh.style(titleStyle, "--- Your To-Do List ---"))
	sh.printList(tasks)
	sh.println(sh.style(countStyle, fmt.Sprintf("\nTotal tasks: %d", len(tasks))))
}

func (sh *Shell) printList(tasks []string) {
	for i, task := range tasks {
		sh.println(fmt.Sprintf("%s %s", sh.style(numberStyle, fmt.Sprintf("%d.", i+1)), task))
	}
}

func (sh *Shell) addTask(ctx context.Context) error {
	text, err := sh.prompt(ctx, "Enter a new task: ")
	if err != nil {
		return err
	}

	task, err := sh.store.Add(text)
	if sh.rejected(err) {
		return nil
	}

	sh.println(sh.style(successStyle, fmt.Sprintf("Task '%s' added successfully!", task)))
	return sh.saved(err)
}

func (sh *Shell) removeTask(ctx context.Context) error {
	if sh.store.Len() == 0 {
		sh.println("No tasks to remove!")
		return nil
	}

	sh.viewTasks()

	answer, err := sh.prompt(ctx, "\nEnter task number to remove: ")
	if err != nil {
		return err
	}

	pos, ok := parseNumber(answer)
	if !ok {
		sh.println(sh.style(warningStyle, "Please enter a valid number!"))
		return nil
	}

	removed, err := sh.store.RemoveAt(pos)
	if sh.rejected(err) {
		return nil
	}

	sh.println(sh.style(successStyle, fmt.Sprintf("Task '%s' removed successfully!", removed)))
	return sh.saved(err)
}

func (sh *Shell) removeTaskByName(ctx context.Context) error {
	if sh.store.Len() == 0 {
		sh.println("No tasks to remove!")
		return nil
	}

	query, err := sh.prompt(ctx, "Enter task name or part of it to remove: ")
	if err != nil {
		return err
	}

	removed, err := sh.store.RemoveByName(query, func(candidates []string) (int, error) {
		sh.println("\n" + sh.style(matchStyle, "Multiple matching tasks found:"))
		sh.printList(candidates)

		answer, err := sh.prompt(ctx, "Enter number of task to remove: ")
		if err != nil {
			return 0, err
		}

		choice, ok := parseNumber(answer)
		if !ok {
			return 0, errNotANumber
		}
		return choice, nil
	})
	if sh.rejected(err) {
		return nil
	}

	if errors.Is(err, errInterrupted) || errors.Is(err, io.EOF) {
		return err
	}

	sh.println(sh.style(successStyle, fmt.Sprintf("Task '%s' removed successfully!", removed)))
	return sh.saved(err)
}

func (sh *Shell) insertTask(ctx context.Context) error {
	if sh.store.Len() == 0 {
		return sh.addTask(ctx)
	}

	sh.viewTasks()

	answer, err := sh.prompt(ctx, fmt.Sprintf("\nEnter position to insert task (1 to %d): ", sh.store.Len()+1))
	if err != nil {
		return err
	}

	pos, ok := parseNumber(answer)
	if !ok {
		sh.println(sh.style(warningStyle, "Please enter a valid number!"))
		return nil
	}

	if err := sh.store.CheckInsertPosition(pos); err != nil {
		sh.println(sh.style(warningStyle, "Invalid position!"))
		return nil
	}

	text, err := sh.prompt(ctx, "Enter the task: ")
	if err != nil {
		return err
	}

	task, err := sh.store.InsertAt(pos, text)
	if sh.rejected(err) {
		return nil
	}

	sh.println(sh.style(successStyle, fmt.Sprintf("Task '%s' inserted at position %d!", task, pos)))
	return sh.saved(err)
}

func (sh *Shell) clearAllTasks(ctx context.Context) error {
	if sh.store.Len() == 0 {
		sh.println("No tasks to clear!")
		return nil
	}

	answer, err := sh.prompt(ctx, fmt.Sprintf("Are you sure you want to delete all %d tasks? (y/N): ", sh.store.Len()))
	if err != nil {
		return err
	}

	_, err = sh.store.ClearAll(answer)
	if sh.rejected(err) {
		return nil
	}

	if err := sh.saved(err); err != nil {
		return err
	}
	sh.println(sh.style(successStyle, "All tasks cleared!"))
	return nil
}

// rejected prints the message for a validation error and reports whether
// the operation was aborted without any change
func (sh *Shell) rejected(err error) bool {
	if err == nil {
		return false
	}

	msg, ok := rejectionMessage(err)
	if !ok {
		return false
	}

	sh.println(sh.style(warningStyle, msg))
	return true
}

// saved reports the outcome of the save that follows every mutation.
// Persistence failures are shown but do not stop the loop.
func (sh *Shell) saved(err error) error {
	var persistErr *PersistError

	switch {
	case err == nil:
		sh.println(sh.style(successStyle, "Tasks saved successfully!"))
		return nil
	case errors.As(err, &persistErr):
		sh.println(sh.style(dangerStyle, fmt.Sprintf("Error saving tasks: %v", persistErr.Err)))
		return nil
	}
	return err
}

func (sh *Shell) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprint(sh.out, sh.style(promptStyle, label))
	return sh.in.ReadLine(ctx)
}

func (sh *Shell) println(s string) {
	fmt.Fprintln(sh.out, s)
}

// style renders s with st when styling is enabled; leading blank lines stay unstyled
func (sh *Shell) style(st lipgloss.Style, s string) string {
	if !sh.styled {
		return s
	}
	body := strings.TrimLeft(s, "\n")
	return s[:len(s)-len(body)] + st.Render(body)
}
