package config

import (
	"testing"
)

func TestResolveHostForDocker_NotInDocker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"mydb.example.com", "mydb.example.com"},
		{"192.168.1.100", "192.168.1.100"},
		{"host.docker.internal", "host.docker.internal"},
	}

	for _, tt := range tests {
		// These hosts should never be modified regardless of Docker status
		result := ResolveHostForDocker(tt.input)
		if result != tt.expected {
			t.Errorf("ResolveHostForDocker(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestResolveHost(t *testing.T) {
	tests := []struct {
		host     string
		inDocker bool
		expected string
	}{
		{"localhost", false, "localhost"},
		{"127.0.0.1", false, "127.0.0.1"},
		{"localhost", true, "host.docker.internal"},
		{"127.0.0.1", true, "host.docker.internal"},
		{"db.internal", true, "db.internal"},
	}

	for _, tt := range tests {
		if got := resolveHost(tt.host, tt.inDocker); got != tt.expected {
			t.Errorf("resolveHost(%q, %v) = %q, want %q", tt.host, tt.inDocker, got, tt.expected)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		inDocker bool
		expected string
	}{
		{"outside docker", "http://localhost:11434/v1", false, "http://localhost:11434/v1"},
		{"localhost with port", "http://localhost:11434/v1", true, "http://host.docker.internal:11434/v1"},
		{"loopback without port", "http://127.0.0.1/v1", true, "http://host.docker.internal/v1"},
		{"remote host", "https://api.openai.com/v1", true, "https://api.openai.com/v1"},
		{"not a url", "::not a url", true, "::not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveURL(tt.rawURL, tt.inDocker); got != tt.expected {
				t.Errorf("resolveURL(%q) = %q, want %q", tt.rawURL, got, tt.expected)
			}
		})
	}
}

func TestIsRunningInDocker_Cached(t *testing.T) {
	first := IsRunningInDocker()
	second := IsRunningInDocker()
	if first != second {
		t.Errorf("IsRunningInDocker() not stable: %v then %v", first, second)
	}
}
