package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"educraft-session-service/internal/app"
	"educraft-session-service/internal/domain"
	"educraft-session-service/internal/infra/memory"
)

func TestRecordCompletionLastWriteWins(t *testing.T) {
	ctx := context.Background()
	service := newProgressService()

	in := domain.CompletionInput{UserID: "u1", SyllabusID: "syl-1", ChapterID: 2, Score: 20, TotalQuestions: 5, CorrectAnswers: 2, Accuracy: 40, Subject: "Science"}
	if _, err := service.RecordCompletion(ctx, in); err != nil {
		t.Fatalf("record: %v", err)
	}
	in.Score, in.CorrectAnswers, in.Accuracy = 50, 5, 100
	second, err := service.RecordCompletion(ctx, in)
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if second.ID == "" || second.Mode != domain.ModeSyllabus {
		t.Fatalf("expected id and syllabus mode, got %+v", second)
	}

	progress, err := service.GetChapterProgress(ctx, "u1", "syl-1")
	if err != nil {
		t.Fatalf("chapter progress: %v", err)
	}
	if len(progress.CompletedChapters) != 1 || progress.CompletedChapters[0].Score != 50 {
		t.Fatalf("expected only the second score, got %+v", progress.CompletedChapters)
	}
	if progress.TotalChapters != 3 {
		t.Fatalf("expected 3 total chapters, got %d", progress.TotalChapters)
	}
}

func TestGetChapterProgressUnknownSyllabus(t *testing.T) {
	ctx := context.Background()
	service := newProgressService()
	_, _ = service.RecordCompletion(ctx, domain.CompletionInput{UserID: "u1", SyllabusID: "gone", ChapterID: 1})

	progress, err := service.GetChapterProgress(ctx, "u1", "gone")
	if err != nil {
		t.Fatalf("chapter progress: %v", err)
	}
	if progress.TotalChapters != 0 || len(progress.CompletedChapters) != 1 {
		t.Fatalf("expected completion with zero total, got %+v", progress)
	}

	empty, _ := service.GetChapterProgress(ctx, "u1", "")
	if empty.TotalChapters != 0 || len(empty.CompletedChapters) != 0 {
		t.Fatalf("expected empty progress for blank syllabus, got %+v", empty)
	}
}

func TestGetProgressPartitionsBySyllabus(t *testing.T) {
	ctx := context.Background()
	service := newProgressService()

	inputs := []domain.CompletionInput{
		{UserID: "u1", SyllabusID: "syl-1", ChapterID: 3, Score: 30, Accuracy: 60, Subject: "Science"},
		{UserID: "u1", SyllabusID: "syl-1", ChapterID: 1, Score: 10, Accuracy: 20, Subject: "Science"},
		{UserID: "u1", Subject: "Math", Grade: "5", Score: 40, Accuracy: 80},
		{UserID: "u1", Subject: "History", Grade: "7", Score: 15, Accuracy: 50},
		{UserID: "u2", Subject: "Math", Score: 99},
	}
	for _, in := range inputs {
		if _, err := service.RecordCompletion(ctx, in); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	view, err := service.GetProgress(ctx, "u1", "")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if view.TotalCompletions != 4 {
		t.Fatalf("expected 4 completions, got %d", view.TotalCompletions)
	}
	chapters := view.SyllabusProgress["syl-1"]
	if len(chapters) != 2 || chapters[0].ChapterID != 1 || chapters[1].ChapterID != 3 {
		t.Fatalf("expected chapters sorted by id, got %+v", chapters)
	}
	math := view.DefaultProgress["Math_5"]
	if math.TotalScore != 40 || math.Sessions != 1 || math.Accuracy != 80 {
		t.Fatalf("unexpected math summary %+v", math)
	}

	filtered, _ := service.GetProgress(ctx, "u1", "History")
	if filtered.TotalCompletions != 1 || len(filtered.SyllabusProgress) != 0 {
		t.Fatalf("expected only history, got %+v", filtered)
	}
	if _, ok := filtered.DefaultProgress["History_7"]; !ok {
		t.Fatalf("expected History_7 bucket, got %+v", filtered.DefaultProgress)
	}
}

func TestDefaultCompletionReplacesPerSubject(t *testing.T) {
	ctx := context.Background()
	service := newProgressService()

	_, _ = service.RecordCompletion(ctx, domain.CompletionInput{UserID: "u1", Subject: "Math", Score: 10})
	_, _ = service.RecordCompletion(ctx, domain.CompletionInput{UserID: "u1", Subject: "Math", Score: 25})

	view, _ := service.GetProgress(ctx, "u1", "Math")
	if got := view.DefaultProgress["Math_5"]; got.Sessions != 1 || got.TotalScore != 25 {
		t.Fatalf("expected the latest default completion only, got %+v", got)
	}
}

func TestRecordCompletionRejectsNegativeChapter(t *testing.T) {
	service := newProgressService()
	_, err := service.RecordCompletion(context.Background(), domain.CompletionInput{SyllabusID: "syl-1", ChapterID: -1})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestRecordCompletionKeepsUsersApart(t *testing.T) {
	ctx := context.Background()
	service := newProgressService()

	if _, err := service.RecordCompletion(ctx, domain.CompletionInput{UserID: "a|b", SyllabusID: "c", ChapterID: 1, Score: 90}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := service.RecordCompletion(ctx, domain.CompletionInput{UserID: "a", SyllabusID: "b|c", ChapterID: 1, Score: 10}); err != nil {
		t.Fatalf("record: %v", err)
	}

	first, _ := service.GetChapterProgress(ctx, "a|b", "c")
	if len(first.CompletedChapters) != 1 || first.CompletedChapters[0].Score != 90 {
		t.Fatalf("expected a|b to keep its completion, got %+v", first.CompletedChapters)
	}
	second, _ := service.GetChapterProgress(ctx, "a", "b|c")
	if len(second.CompletedChapters) != 1 || second.CompletedChapters[0].Score != 10 {
		t.Fatalf("expected a to keep its completion, got %+v", second.CompletedChapters)
	}
}

func TestRecordCompletionUsesClock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	service := app.NewProgressServiceWithClock(memory.NewCompletionStore(), memory.NewSyllabusRepository(memory.NewStaticSyllabusLoader(nil), time.Minute), func() time.Time { return at })

	c, err := service.RecordCompletion(context.Background(), domain.CompletionInput{UserID: "u1", ChapterID: 4})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !c.CompletedAt.Equal(at) || c.ChapterTitle != "Chapter 4" || c.Mode != domain.ModeDefault {
		t.Fatalf("unexpected completion %+v", c)
	}
}

func newProgressService() *app.ProgressService {
	syllabi := memory.NewSyllabusRepository(memory.NewStaticSyllabusLoader(map[string]domain.Syllabus{
		"syl-1": {ID: "syl-1", Chapters: []domain.Chapter{{ID: 1}, {ID: 2}, {ID: 3}}},
	}), time.Minute)
	return app.NewProgressService(memory.NewCompletionStore(), syllabi, nil)
}
