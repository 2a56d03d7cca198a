package keypoints

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractMalformedJSON(t *testing.T) {
	points, err := Extract("{keyPoints: [}")
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("err = %v, want ErrInvalidJSON", err)
	}
	if points != nil {
		t.Fatalf("points = %v, want nil", points)
	}
}

func TestExtractValidJSONWithoutKeyPoints(t *testing.T) {
	points, err := Extract("{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points == nil || len(points) != 0 {
		t.Fatalf("points = %v, want empty list", points)
	}
}

func TestExtractWellFormedPoint(t *testing.T) {
	raw := `{"keyPoints":[{"title":"Too short","details":"Content too short.","quote":""}]}`
	points, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("len = %d, want 1", len(points))
	}
	if points[0].Title != "Too short" || points[0].Details != "Content too short." {
		t.Fatalf("fields not preserved: %+v", points[0])
	}
}

func TestExtractStripsReasoningAndFences(t *testing.T) {
	raw := "Some reasoning <think>blah</think>```json\n{\"keyPoints\":[{\"title\":\"A\",\"details\":\"B\"}]}```"
	points, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 || points[0].Title != "A" || points[0].Details != "B" {
		t.Fatalf("points = %+v", points)
	}
}

func TestExtractNonASCIIReasoningPrefix(t *testing.T) {
	// Case folding changes the byte length of these runes; the marker
	// search must still land on the real marker boundary.
	points, err := Extract("ȺȺȺȺȺȺȺȺȺȺ</THINK>{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("points = %+v, want empty list", points)
	}

	points, err = Extract("İ reasoning</THINK>{\"keyPoints\":[{\"title\":\"A\",\"details\":\"B\"}]}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 || points[0].Title != "A" {
		t.Fatalf("points = %+v, want the single parsed point", points)
	}
}

func TestExtractFenceEquivalence(t *testing.T) {
	inner := `{"keyPoints":[{"title":"A","details":"B"}]}`
	plain, errPlain := Extract(inner)
	fenced, errFenced := Extract("```json\n" + inner + "\n```")
	if errPlain != nil || errFenced != nil {
		t.Fatalf("errors: %v / %v", errPlain, errFenced)
	}
	if len(plain) != len(fenced) || plain[0] != fenced[0] {
		t.Fatalf("fenced extraction diverged: %+v vs %+v", plain, fenced)
	}
}

func TestExtractRepairsSplitStrings(t *testing.T) {
	raw := "{\"keyPoints\":[{\"title\":\"A\",\"details\":\"first line\"\n\"second line\"}]}"
	points, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("points = %+v", points)
	}
	if points[0].Details != "first line\nsecond line" {
		t.Fatalf("details = %q, want merged with newline", points[0].Details)
	}
}

func TestExtractFiltersBadEntries(t *testing.T) {
	raw := `{"keyPoints":[{"title":1,"details":"x"},{"title":"ok","details":"kept"},"junk"]}`
	points, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 || points[0].Title != "ok" {
		t.Fatalf("points = %+v", points)
	}
}

func TestExtractPreservesOrder(t *testing.T) {
	raw := `{"keyPoints":[{"title":"1","details":"a"},{"title":"2","details":"b"},{"title":"3","details":"c"}]}`
	points, err := Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"1", "2", "3"} {
		if points[i].Title != want {
			t.Fatalf("order not preserved: %+v", points)
		}
	}
}

func TestEmptyReason(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", "empty response"},
		{"{}", "empty JSON object"},
		{`{"keyPoints":[]}`, "empty key point list"},
		{`{"other":true}`, "no usable key points"},
	}
	for _, tc := range cases {
		if got := EmptyReason(tc.raw); !strings.Contains(got, tc.want) {
			t.Errorf("EmptyReason(%q) = %q, want mention of %q", tc.raw, got, tc.want)
		}
	}
}
