// Package command parses chat-style task creation commands of the form
//
//	[@bot] assignee title words... MM/DD [priority]
//
// into a typed request. Parsing is pure; resolving the assignee token against
// the user roster is the caller's job.
package command

import (
	"errors"
	"regexp"
	"strings"

	"github.com/mizunoha/task-board-api/internal/models"
)

// ErrInvalidCommand is returned when input does not match the grammar. The
// message doubles as the user-facing usage hint.
var ErrInvalidCommand = errors.New("コマンド形式が正しくありません。例: @bot 田中 レポート提出 11/10 High")

// Parsed is the extracted command. DueDate stays in raw MM/DD form; date
// resolution happens downstream.
type Parsed struct {
	AssigneeToken string
	Title         string
	DueDate       string
	Priority      models.TaskPriority
}

// The lazy title group makes the date group bind to the last MM/DD pattern in
// the input, so dates inside the title are kept as title text.
var commandPattern = regexp.MustCompile(`^(?i)(?:@bot\s+)?(\S+)\s+(.+?)\s+(\d{1,2}/\d{1,2})(?:\s+(High|Med|Low|高|中|低))?$`)

// Parse extracts assignee, title, due date and priority from a command string.
func Parse(text string) (*Parsed, error) {
	match := commandPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return nil, ErrInvalidCommand
	}

	return &Parsed{
		AssigneeToken: match[1],
		Title:         match[2],
		DueDate:       match[3],
		Priority:      normalizePriority(match[4]),
	}, nil
}

// normalizePriority maps a priority token to the enum. Missing or
// unrecognized tokens fall open to Med rather than failing the parse.
func normalizePriority(token string) models.TaskPriority {
	switch strings.ToLower(token) {
	case "high", "高":
		return models.TaskPriorityHigh
	case "med", "中":
		return models.TaskPriorityMedium
	case "low", "低":
		return models.TaskPriorityLow
	default:
		return models.TaskPriorityMedium
	}
}
