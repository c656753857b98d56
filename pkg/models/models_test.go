package models

import (
	"database/sql"
	"testing"
	"time"
)

func TestAutoQuizDue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	u := User{SessionIntervalMinutes: 15}
	if !u.AutoQuizDue(now) {
		t.Error("user with no prior delivery should be due")
	}

	u.LastAutoQuiz = sql.NullTime{Time: now.Add(-15 * time.Minute), Valid: true}
	if !u.AutoQuizDue(now) {
		t.Error("elapsed interval should be due")
	}

	u.LastAutoQuiz = sql.NullTime{Time: now.Add(-14 * time.Minute), Valid: true}
	if u.AutoQuizDue(now) {
		t.Error("interval not yet elapsed should not be due")
	}
}

func TestPostDue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	c := ChatContext{ScheduleIntervalMinutes: 30}
	if !c.PostDue(now) {
		t.Error("context with no prior post should be due")
	}

	c.LastPosted = sql.NullTime{Time: now.Add(-31 * time.Minute), Valid: true}
	if !c.PostDue(now) {
		t.Error("elapsed interval should be due")
	}

	c.LastPosted = sql.NullTime{Time: now, Valid: true}
	if c.PostDue(now) {
		t.Error("fresh post should not be due")
	}
}

func TestGroupTaskRender(t *testing.T) {
	task := GroupTask{Template: "Переведите слово: {word}"}
	if got := task.Render("νερό"); got != "Переведите слово: νερό" {
		t.Errorf("Render = %q", got)
	}

	task = GroupTask{Template: "Задание без слота"}
	if got := task.Render("νερό"); got != "Задание без слота" {
		t.Errorf("Render without slot = %q", got)
	}
}

func TestValidWordType(t *testing.T) {
	for _, wt := range WordTypes {
		if !ValidWordType(string(wt)) {
			t.Errorf("%s should be valid", wt)
		}
	}
	if ValidWordType("particle") {
		t.Error("unknown type should be invalid")
	}
	if ValidWordType("") {
		t.Error("empty type should be invalid")
	}
}

func TestSuccessRate(t *testing.T) {
	s := UserStat{CorrectAnswers: 9, TotalAnswers: 10}
	if got := s.SuccessRate(); got != 0.9 {
		t.Errorf("SuccessRate = %v, want 0.9", got)
	}

	empty := UserStat{}
	if got := empty.SuccessRate(); got != 0 {
		t.Errorf("SuccessRate with no answers = %v, want 0", got)
	}

	totals := UserTotals{TotalCorrect: 1, TotalQuestions: 4}
	if got := totals.SuccessPercent(); got != 25 {
		t.Errorf("SuccessPercent = %v, want 25", got)
	}
}
