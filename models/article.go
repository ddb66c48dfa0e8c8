package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type IssueState string

const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

// Reserved label names that encode article status on top of issue state.
const (
	LabelDraft    = "draft"
	LabelArchived = "archived"
)

type ArticleStatus string

const (
	StatusPublished ArticleStatus = "published"
	StatusDraft     ArticleStatus = "draft"
	StatusArchived  ArticleStatus = "archived"
	// StatusClosed is a closed issue carrying neither the draft nor the archived label.
	StatusClosed ArticleStatus = "closed"
)

type Priority string

const (
	PriorityP0 Priority = "p0"
	PriorityP1 Priority = "p1"
	PriorityP2 Priority = "p2"
	PriorityP3 Priority = "p3"
)

type Author struct {
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Label struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
}

// Issue is an article as stored upstream.
type Issue struct {
	Number         IssueNumber `json:"number"`
	State          IssueState  `json:"state"`
	StateReason    string      `json:"state_reason,omitempty"`
	Title          string      `json:"title"`
	Body           string      `json:"body,omitempty"`
	BodyHTML       string      `json:"body_html,omitempty"`
	Author         Author      `json:"author"`
	Assignees      []Author    `json:"assignees"`
	Labels         []Label     `json:"labels"`
	CommentCount   int         `json:"comment_count"`
	Priority       Priority    `json:"priority,omitempty"`
	CreatedAt      string      `json:"created_at"`
	UpdatedAt      string      `json:"updated_at"`
	LastActedAt    string      `json:"last_acted_at,omitempty"`
	ReferenceCount int         `json:"reference_count,omitempty"`
}

// HasLabel reports whether the issue carries a label with exactly that name.
func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// LabelNames returns label names in their stored order.
func (i Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

// Status derives the article status from state and labels. An open issue is
// published whatever its labels; archived wins over draft when both are set.
func (i Issue) Status() ArticleStatus {
	if i.State != StateClosed {
		return StatusPublished
	}
	switch {
	case i.HasLabel(LabelArchived):
		return StatusArchived
	case i.HasLabel(LabelDraft):
		return StatusDraft
	default:
		return StatusClosed
	}
}

type Comment struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	Author    Author `json:"author"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// IssueNumber is the upstream issue number. Upstreams disagree on whether it is
// sent as a JSON string or a number, so both are accepted and it is always
// written back as a string.
type IssueNumber string

func (n *IssueNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = IssueNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("issue number: %w", err)
	}
	*n = IssueNumber(num.String())
	return nil
}

func (n IssueNumber) String() string { return string(n) }

// ValidIssueNumber reports whether s is a positive integer without leading zeros.
func ValidIssueNumber(s string) bool {
	if s == "" || s[0] == '0' {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// LabelsChanged compares two label sets ignoring order.
func LabelsChanged(next, prev []string) bool {
	if len(next) != len(prev) {
		return true
	}
	counts := make(map[string]int, len(prev))
	for _, l := range prev {
		counts[l]++
	}
	for _, l := range next {
		if counts[l] == 0 {
			return true
		}
		counts[l]--
	}
	return false
}

// PriorityLabels are the label names used to mark article priority.
var PriorityLabels = []string{"P0", "P1", "P2", "P3"}

// SetPriorityLabel removes every priority label from labels and appends
// priority, so at most one of P0..P3 remains. An empty priority only clears.
func SetPriorityLabel(labels []string, priority string) []string {
	out := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || IsPriorityLabel(l) {
			continue
		}
		out = append(out, l)
	}
	if priority != "" {
		out = append(out, priority)
	}
	return out
}

// IsPriorityLabel reports whether l is one of PriorityLabels.
func IsPriorityLabel(l string) bool {
	for _, p := range PriorityLabels {
		if l == p {
			return true
		}
	}
	return false
}

// SplitLabels parses a comma or whitespace separated label string.
func SplitLabels(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
