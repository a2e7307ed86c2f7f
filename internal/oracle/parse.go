package oracle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"studyquest/internal/quest"
)

// Sentinels delimiting a quest proposal inside an assistant reply.
const (
	StartSentinel = "[QUEST_CREATE]"
	EndSentinel   = "[/QUEST_CREATE]"
)

// Result is a parsed assistant reply. Quest is nil when the reply carried no
// usable proposal.
type Result struct {
	Quest        *quest.Proposal
	CleanMessage string
}

// ParseError describes a proposal block that could not be decoded. It never
// leaves this package.
type ParseError struct {
	Block string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse quest block: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errBlankTitle = errors.New("title is required")

// ParseResponse extracts the first quest proposal from text. A missing or
// malformed block yields a nil Quest and text unchanged.
func ParseResponse(text string) Result {
	res, _ := parse(text)
	return res
}

func parse(text string) (Result, error) {
	unchanged := Result{CleanMessage: text}

	start := strings.Index(text, StartSentinel)
	if start < 0 {
		return unchanged, nil
	}
	inner := start + len(StartSentinel)
	n := strings.Index(text[inner:], EndSentinel)
	if n < 0 {
		return unchanged, nil
	}
	end := inner + n
	block := text[inner:end]

	p, err := decodeProposal(block)
	if err != nil {
		return unchanged, &ParseError{Block: block, Err: err}
	}
	return Result{
		Quest:        p,
		CleanMessage: joinSeam(text[:start], text[end+len(EndSentinel):]),
	}, nil
}

type wireTask struct {
	Title string          `json:"title"`
	XP    json.RawMessage `json:"xp"`
}

type wireProposal struct {
	Title     string     `json:"title"`
	Icon      string     `json:"icon"`
	IconColor string     `json:"iconColor"`
	Deadline  string     `json:"deadline"`
	Tasks     []wireTask `json:"tasks"`
}

func decodeProposal(block string) (*quest.Proposal, error) {
	var w wireProposal
	if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &w); err != nil {
		return nil, err
	}
	if strings.TrimSpace(w.Title) == "" {
		return nil, errBlankTitle
	}
	p := &quest.Proposal{
		Title:     w.Title,
		Icon:      w.Icon,
		IconColor: w.IconColor,
		Deadline:  w.Deadline,
	}
	for _, t := range w.Tasks {
		p.Tasks = append(p.Tasks, quest.ProposedTask{Title: t.Title, XP: decodeXP(t.XP)})
	}
	return p, nil
}

// decodeXP accepts a JSON number or a numeric string. Anything else is nil.
func decodeXP(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
	} else {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	xp := int(f)
	return &xp
}

// joinSeam glues the prose around a removed block. The seam keeps a newline
// if it had one, otherwise a single space.
func joinSeam(before, after string) string {
	b := strings.TrimRightFunc(before, unicode.IsSpace)
	a := strings.TrimLeftFunc(after, unicode.IsSpace)
	if b == "" || a == "" {
		return strings.TrimSpace(b + a)
	}
	sep := " "
	if strings.Contains(before[len(b):], "\n") || strings.Contains(after[:len(after)-len(a)], "\n") {
		sep = "\n"
	}
	return strings.TrimSpace(b + sep + a)
}
