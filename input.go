package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
)

var errInterrupted = errors.New("interrupted")

type lineResult struct {
	text string
	err  error
}

// lineReader reads lines in the background so a prompt can be abandoned
// when its context is cancelled
type lineReader struct {
	lines chan lineResult
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan lineResult)}
	go lr.run(bufio.NewReader(r))
	return lr
}

func (lr *lineReader) run(br *bufio.Reader) {
	defer close(lr.lines)

	for {
		line, err := br.ReadString('\n')

		if line != "" {
			lr.lines <- lineResult{text: strings.TrimRight(line, "\r\n")}
		}

		if err != nil {
			lr.lines <- lineResult{err: err}
			return
		}
	}
}

// ReadLine blocks until a line arrives, input ends, or ctx is cancelled
func (lr *lineReader) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", errInterrupted
	case res, ok := <-lr.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

// parseNumber parses a user-typed 1-based number
func parseNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
