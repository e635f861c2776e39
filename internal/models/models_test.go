package models

import (
	"encoding/json"
	"testing"
)

func TestAssignmentStatus_Terminal(t *testing.T) {
	tests := []struct {
		status AssignmentStatus
		want   bool
	}{
		{AssignmentAssigned, false},
		{AssignmentStarted, false},
		{AssignmentCompleted, true},
		{AssignmentExpired, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestQuestion_OptionList(t *testing.T) {
	raw, err := json.Marshal([]Option{{Text: "a"}, {Text: "b"}})
	if err != nil {
		t.Fatal(err)
	}

	q := &Question{Options: raw}
	options, err := q.OptionList()
	if err != nil {
		t.Fatalf("OptionList failed: %v", err)
	}
	if len(options) != 2 || options[1].Text != "b" {
		t.Errorf("unexpected options: %+v", options)
	}

	corrupt := &Question{Options: []byte("{not json")}
	if _, err := corrupt.OptionList(); err == nil {
		t.Error("expected error for corrupt options")
	}
}

func TestAttempt_AnswerRecords(t *testing.T) {
	raw, err := json.Marshal([]AnswerRecord{
		{QuestionID: 101, SelectedOptionIndex: 2, IsCorrect: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	a := &Attempt{Answers: raw}
	records, err := a.AnswerRecords()
	if err != nil {
		t.Fatalf("AnswerRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].QuestionID != 101 || !records[0].IsCorrect {
		t.Errorf("unexpected records: %+v", records)
	}

	empty := &Attempt{}
	records, err = empty.AnswerRecords()
	if err != nil {
		t.Fatalf("empty AnswerRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
}

func TestUser_IsAdmin(t *testing.T) {
	if (&User{Role: RoleStudent}).IsAdmin() {
		t.Error("student must not be admin")
	}
	if !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin must be admin")
	}
}
