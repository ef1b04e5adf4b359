package dto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDueDateUnmarshal(t *testing.T) {
	cases := map[string]*time.Time{
		`{"due_date":"2024-01-01"}`:                 ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		`{"due_date":"2024-01-01T00:00:00Z"}`:       ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		`{"due_date":"2024-01-01T02:00:00+02:00"}`:  ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		`{"due_date":"2024-03-05T10:30:00"}`:        ptrTime(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)),
		`{"due_date":null}`:                         nil,
		`{"due_date":"  "}`:                         nil,
		`{}`:                                        nil,
	}
	for in, want := range cases {
		var body TaskCreate
		if err := json.Unmarshal([]byte(in), &body); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		got := body.DueDate.Ptr()
		switch {
		case want == nil && got != nil:
			t.Errorf("%s: want nil, got %v", in, got)
		case want != nil && (got == nil || !got.Equal(*want)):
			t.Errorf("%s: want %v, got %v", in, want, got)
		}
	}

	var body TaskCreate
	if err := json.Unmarshal([]byte(`{"due_date":"tomorrow"}`), &body); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
