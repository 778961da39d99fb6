package llm_test

import (
	"testing"

	"github.com/vcalderon2009/note-taker/internal/domain/llm"
)

func TestStatusError_Transient(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{400, false},
		{401, false},
		{404, false},
		{408, true},
		{422, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
	}

	for _, tt := range tests {
		err := &llm.StatusError{StatusCode: tt.status}
		if got := err.Transient(); got != tt.want {
			t.Errorf("Transient() for status %d = %v, want %v", tt.status, got, tt.want)
		}
	}
}
