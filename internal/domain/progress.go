package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Completion modes.
const (
	ModeSyllabus = "syllabus"
	ModeDefault  = "default"
)

// Completion is the immutable record of a finished chapter or session.
type Completion struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SyllabusID     string    `json:"syllabus_id,omitempty"`
	ChapterID      int       `json:"chapter_id,omitempty"`
	ChapterTitle   string    `json:"chapter_title"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Accuracy       float64   `json:"accuracy"`
	TimeTaken      int       `json:"time_taken"`
	Mode           string    `json:"mode"`
	Subject        string    `json:"subject"`
	Grade          string    `json:"grade"`
	CompletedAt    time.Time `json:"completed_at"`
}

// SyllabusScoped reports whether the completion belongs to a syllabus.
func (c Completion) SyllabusScoped() bool {
	return c.SyllabusID != ""
}

// StorageKey is the upsert key: a newer completion for the same key replaces the old one.
func (c Completion) StorageKey() string {
	if c.SyllabusScoped() {
		return composeKey(ModeSyllabus, c.UserID, c.SyllabusID, strconv.Itoa(c.ChapterID))
	}
	return composeKey(ModeDefault, c.UserID, c.Subject)
}

// CompletionInput is what a client reports when it finishes a chapter.
type CompletionInput struct {
	UserID         string  `json:"user_id"`
	SyllabusID     string  `json:"syllabus_id,omitempty"`
	ChapterID      int     `json:"chapter_id,omitempty"`
	ChapterTitle   string  `json:"chapter_title"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
	TimeTaken      int     `json:"time_taken"`
	Mode           string  `json:"mode"`
	Subject        string  `json:"subject"`
	Grade          string  `json:"grade"`
}

// Validate rejects a chapter id that cannot name a chapter. Counters are
// stored as reported. Defaults are applied by the caller.
func (in CompletionInput) Validate() error {
	if in.ChapterID < 0 {
		return fmt.Errorf("%w: chapter_id must not be negative", ErrInvalidRequest)
	}
	return nil
}

// Normalize fills defaults the same way generation requests do.
func (in CompletionInput) Normalize() CompletionInput {
	in.UserID = orDefault(in.UserID, DefaultUserID)
	in.Subject = orDefault(in.Subject, DefaultSubject)
	in.Grade = orDefault(in.Grade, DefaultGrade)
	in.SyllabusID = strings.TrimSpace(in.SyllabusID)
	if in.SyllabusID != "" {
		in.Mode = orDefault(in.Mode, ModeSyllabus)
	} else {
		in.Mode = orDefault(in.Mode, ModeDefault)
	}
	if strings.TrimSpace(in.ChapterTitle) == "" {
		in.ChapterTitle = fmt.Sprintf("Chapter %d", in.ChapterID)
	}
	return in
}

// ChapterSummary is one completed chapter in a progress view.
type ChapterSummary struct {
	ChapterID    int     `json:"chapter_id"`
	ChapterTitle string  `json:"chapter_title"`
	Accuracy     float64 `json:"accuracy"`
	Score        int     `json:"score"`
}

// SubjectSummary aggregates non-syllabus sessions for one subject and grade.
type SubjectSummary struct {
	Subject    string  `json:"subject"`
	Grade      string  `json:"grade"`
	TotalScore int     `json:"total_score"`
	Sessions   int     `json:"sessions"`
	Accuracy   float64 `json:"accuracy"`
}

// ProgressView is the aggregated progress of one user.
type ProgressView struct {
	SyllabusProgress map[string][]ChapterSummary `json:"syllabus_progress"`
	DefaultProgress  map[string]SubjectSummary   `json:"default_progress"`
	TotalCompletions int                         `json:"total_completions"`
}

// ChapterProgress reports completion of a single syllabus.
type ChapterProgress struct {
	CompletedChapters []ChapterSummary `json:"completed_chapters"`
	TotalChapters     int              `json:"total_chapters"`
}
