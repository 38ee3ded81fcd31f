package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question models a generated multiple choice question.
type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// Validate checks the shape the clients rely on.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty question text", ErrMalformedContent)
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("%w: expected %d options, got %d", ErrMalformedContent, OptionCount, len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: option %d is empty", ErrMalformedContent, i)
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return fmt.Errorf("%w: correct_index %d out of range", ErrMalformedContent, q.CorrectIndex)
	}
	return nil
}

// Interaction types decide the flavour of a non-syllabus question.
const (
	InteractionEnemy    = "enemy"
	InteractionResource = "resource"
	InteractionQuest    = "quest"
)

// Defaults applied to generation and completion requests.
const (
	DefaultSubject    = "Math"
	DefaultGrade      = "5"
	DefaultDifficulty = "medium"
	DefaultUserID     = "anonymous"
)

// GenerationRequest describes one question request from a client.
type GenerationRequest struct {
	Subject         string   `json:"subject"`
	Grade           string   `json:"grade"`
	Difficulty      string   `json:"difficulty"`
	InteractionType string   `json:"interaction_type"`
	WeakTopics      []string `json:"weak_topics"`
	ChapterContent  string   `json:"chapter_content,omitempty"`
	SyllabusID      string   `json:"syllabus_id,omitempty"`
	ChapterID       int      `json:"chapter_id,omitempty"`
	UserID          string   `json:"user_id"`
}

// Normalize fills in defaults for omitted fields.
func (r GenerationRequest) Normalize() GenerationRequest {
	r.Subject = orDefault(r.Subject, DefaultSubject)
	r.Grade = orDefault(r.Grade, DefaultGrade)
	r.Difficulty = orDefault(strings.ToLower(r.Difficulty), DefaultDifficulty)
	r.InteractionType = orDefault(strings.ToLower(r.InteractionType), InteractionEnemy)
	r.UserID = orDefault(r.UserID, DefaultUserID)
	r.SyllabusID = strings.TrimSpace(r.SyllabusID)
	return r
}

// Validate rejects requests that cannot be keyed sensibly. Call after Normalize.
// A chapter id without a syllabus falls back to free play, and unknown
// interaction types are keyed as given.
func (r GenerationRequest) Validate() error {
	if r.ChapterID < 0 {
		return fmt.Errorf("%w: chapter_id must not be negative", ErrInvalidRequest)
	}
	return nil
}

// SyllabusScoped reports whether the request targets a syllabus chapter.
func (r GenerationRequest) SyllabusScoped() bool {
	return r.SyllabusID != "" && r.ChapterID > 0
}

// SessionKey groups requests that share one deduplication history.
func (r GenerationRequest) SessionKey() string {
	if r.SyllabusScoped() {
		return composeKey("syl", r.UserID, r.SyllabusID, strconv.Itoa(r.ChapterID))
	}
	return composeKey("free", r.UserID, r.Subject, r.Grade, r.InteractionType)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
