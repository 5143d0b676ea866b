package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"golang.org/x/term"
)

// termSize is a test seam for term.GetSize.
var termSize = term.GetSize

const defaultWidth = 100

// terminalWidth returns the width of stdout, or defaultWidth when stdout is
// not a terminal.
func terminalWidth() int {
	w, _, err := termSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetDefault is GetSimpleText for editing: the current value is shown and an
// empty answer keeps it.
func GetDefault(reader *bufio.Reader, prompt, current string, w io.Writer) (string, error) {
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, current)
	}
	v, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// GetMultiline prints a prompt to w and reads lines until an empty one. The
// collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// Confirm asks a yes/no question. Only "s", "sim", "y" and "yes" count as yes.
func Confirm(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	v, err := GetSimpleText(reader, prompt+" (s/N)", w)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "s", "sim", "y", "yes":
		return true, nil
	}
	return false, nil
}

// GetStatus lets the user pick a workflow status by number. An empty answer
// returns current.
func GetStatus(reader *bufio.Reader, current models.WorkflowStatus, w io.Writer) (models.WorkflowStatus, error) {
	var b strings.Builder
	b.WriteString("Status:")
	for i, s := range models.WorkflowStatuses {
		fmt.Fprintf(&b, " %d) %s", i+1, s)
	}
	v, err := GetDefault(reader, b.String(), string(current), w)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(models.WorkflowStatuses) {
		return models.WorkflowStatuses[n-1], nil
	}
	return models.WorkflowStatus(v), nil
}

// splitList splits a comma separated answer, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
