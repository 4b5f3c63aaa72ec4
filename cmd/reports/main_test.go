package main

import (
	"testing"
	"time"
)

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name           string
		requestTimeout time.Duration
		want           time.Duration
	}{
		{"disabled", 0, 0},
		{"negative", -time.Second, 0},
		{"default", 30 * time.Second, 35 * time.Second},
		{"short", 500 * time.Millisecond, 5500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := writeTimeout(tt.requestTimeout); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
