package logfields

import (
	"errors"
	"testing"
)

func TestErrorAttr(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("Error(nil) = %q, want empty", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("Error(boom) = %q, want boom", got)
	}
}

func TestAttrKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"slot", Slot("userData.user").Key, KeySlot},
		{"entity", EntityID(7).Key, KeyEntityID},
		{"endpoint", Endpoint("user/login").Key, KeyEndpoint},
		{"duration", DurationMS(1.5).Key, KeyDurationMS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key != tt.want {
				t.Fatalf("key = %q, want %q", tt.key, tt.want)
			}
		})
	}
}
