package types

import (
	"reflect"
	"testing"
)

func TestRecordState_IsValid(t *testing.T) {
	for _, s := range []RecordState{StateOpen, StateClosed} {
		if !s.IsValid() {
			t.Errorf("%q.IsValid() = false", s)
		}
	}
	if RecordState("all").IsValid() {
		t.Error(`"all".IsValid() = true`)
	}
}

func TestTrackingRecord_Labels(t *testing.T) {
	rec := &TrackingRecord{
		Number: 12,
		Labels: LabelsFromNames([]string{LabelTracking, "eeg", LabelComplete}),
	}
	if !rec.HasLabel("eeg") || rec.HasLabel("fmri") {
		t.Errorf("HasLabel mismatch for %v", rec.LabelNames())
	}
	if !rec.IsAutoCompleted() {
		t.Error("IsAutoCompleted() = false, want true")
	}
	if got, want := rec.LabelNames(), []string{"doc-tags", "eeg", "doc-tags-complete"}; !reflect.DeepEqual(got, want) {
		t.Errorf("LabelNames() = %v, want %v", got, want)
	}
	if got := rec.Ref(); got != "#12" {
		t.Errorf("Ref() = %q, want #12", got)
	}
}

func TestTrackingRecord_Nil(t *testing.T) {
	var rec *TrackingRecord
	if rec.HasLabel(LabelTracking) {
		t.Error("nil record has label")
	}
	if rec.LabelNames() != nil {
		t.Error("nil record has label names")
	}
	if got := rec.Ref(); got != "#?" {
		t.Errorf("Ref() = %q", got)
	}
}

func TestMergeLabels(t *testing.T) {
	got := MergeLabels([]string{"bug", "doc-tags"}, []string{"doc-tags", "", "eeg"}, []string{"bug"})
	want := []string{"bug", "doc-tags", "eeg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeLabels() = %v, want %v", got, want)
	}
}

func TestSameLabels(t *testing.T) {
	tests := []struct {
		a, b []string
		want bool
	}{
		{[]string{"a", "b"}, []string{"b", "a"}, true},
		{[]string{"a"}, []string{"a", "b"}, false},
		{[]string{"a", "c"}, []string{"a", "b"}, false},
		{nil, []string{}, true},
	}
	for _, tt := range tests {
		if got := SameLabels(tt.a, tt.b); got != tt.want {
			t.Errorf("SameLabels(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestComment_CommentID(t *testing.T) {
	c := &Comment{ID: 4242}
	if got := c.CommentID(); got != "4242" {
		t.Errorf("CommentID() = %q", got)
	}
}
