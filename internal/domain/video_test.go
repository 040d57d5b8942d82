package domain

import "testing"

func TestIndexingStatusCanTransition(t *testing.T) {
	tests := []struct {
		from IndexingStatus
		to   IndexingStatus
		want bool
	}{
		{StatusPending, StatusIndexing, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusIndexing, StatusCompleted, true},
		{StatusIndexing, StatusFailed, true},
		{StatusIndexing, StatusPending, false},
		{StatusCompleted, StatusIndexing, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusFailed, StatusIndexing, true},
		{StatusFailed, StatusCompleted, false},
		{IndexingStatus("UNKNOWN"), StatusIndexing, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIndexingStatusValid(t *testing.T) {
	for _, s := range []IndexingStatus{StatusPending, StatusIndexing, StatusCompleted, StatusFailed} {
		if !s.Valid() {
			t.Errorf("%s: expected valid", s)
		}
	}
	if IndexingStatus("DONE").Valid() {
		t.Error("DONE: expected invalid")
	}
}

func TestNewVideoDefaults(t *testing.T) {
	v := NewVideo("user-1", "trip", "videos/user-1/abc.mp4")
	if v.IndexingStatus != StatusPending {
		t.Errorf("new video status = %s, want %s", v.IndexingStatus, StatusPending)
	}
	if v.ThumbnailKey != nil {
		t.Error("new video should have no thumbnail")
	}
}
