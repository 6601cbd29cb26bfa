package models

import (
	"reflect"
	"testing"
)

func TestQuestion_OptionsRoundTrip(t *testing.T) {
	q := &Question{}
	options := []string{"Deoxyribonucleic Acid", "RNA", "Protein"}

	if err := q.SetOptions(options); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}

	decoded, err := q.OptionList()
	if err != nil {
		t.Fatalf("OptionList() error = %v", err)
	}
	if !reflect.DeepEqual(decoded, options) {
		t.Errorf("OptionList() = %v, want %v", decoded, options)
	}
}

func TestQuestion_OptionListMalformed(t *testing.T) {
	q := &Question{Options: "not json"}

	if _, err := q.OptionList(); err == nil {
		t.Error("OptionList() expected error for malformed JSON, got nil")
	}
}

func TestQuestion_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category string
		text     string
		options  []string
		answer   string
		wantErr  bool
	}{
		{
			name:     "valid question",
			category: "bio",
			text:     "DNA stands for?",
			options:  []string{"Deoxyribonucleic Acid", "RNA"},
			answer:   "Deoxyribonucleic Acid",
			wantErr:  false,
		},
		{
			name:     "answer not among options",
			category: "bio",
			text:     "DNA stands for?",
			options:  []string{"RNA", "Protein"},
			answer:   "Deoxyribonucleic Acid",
			wantErr:  true,
		},
		{
			name:     "single option",
			category: "bio",
			text:     "DNA stands for?",
			options:  []string{"Deoxyribonucleic Acid"},
			answer:   "Deoxyribonucleic Acid",
			wantErr:  true,
		},
		{
			name:     "empty question text",
			category: "bio",
			text:     "",
			options:  []string{"A", "B"},
			answer:   "A",
			wantErr:  true,
		},
		{
			name:     "empty category",
			category: "",
			text:     "DNA stands for?",
			options:  []string{"A", "B"},
			answer:   "A",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Question{
				Category:      tt.category,
				QuestionText:  tt.text,
				CorrectAnswer: tt.answer,
			}
			if err := q.SetOptions(tt.options); err != nil {
				t.Fatalf("SetOptions() error = %v", err)
			}

			err := q.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestion_BeforeSave(t *testing.T) {
	q := &Question{
		Category:      "bio",
		QuestionText:  "DNA stands for?",
		CorrectAnswer: "missing",
	}
	if err := q.SetOptions([]string{"A", "B"}); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}

	if err := q.BeforeSave(nil); err == nil {
		t.Error("BeforeSave() expected error for invalid question, got nil")
	}
}

func TestQuestion_TableName(t *testing.T) {
	q := Question{}
	if q.TableName() != "questions" {
		t.Errorf("TableName() = %q, want %q", q.TableName(), "questions")
	}
}

func TestCategoryRandomConstant(t *testing.T) {
	if CategoryRandom != "random" {
		t.Errorf("CategoryRandom = %q, want %q", CategoryRandom, "random")
	}
}
