package logging

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type netTimeout struct{}

func (netTimeout) Error() string { return "i/o timeout" }
func (netTimeout) Timeout() bool { return true }

func TestIsRateLimit(t *testing.T) {
	rest := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{errors.New("status 429"), true},
		{fmt.Errorf("send: %w", rest), true},
		{&discordgo.RateLimitError{RateLimit: &discordgo.RateLimit{TooManyRequests: &discordgo.TooManyRequests{}}}, true},
	}
	for _, tt := range tests {
		if got := IsRateLimit(tt.err); got != tt.want {
			t.Errorf("IsRateLimit(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(fmt.Errorf("fetch: %w", context.DeadlineExceeded)) {
		t.Error("deadline should be a timeout")
	}
	if !IsTimeout(fmt.Errorf("dial: %w", netTimeout{})) {
		t.Error("net timeout should be a timeout")
	}
	if IsTimeout(context.Canceled) || IsTimeout(nil) {
		t.Error("cancel and nil are not timeouts")
	}
}

func TestIsForbidden(t *testing.T) {
	err := fmt.Errorf("dm: %w", &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}})
	if !IsForbidden(err) {
		t.Error("403 should be forbidden")
	}
	if IsForbidden(errors.New("403")) {
		t.Error("plain text is not a REST error")
	}
}
