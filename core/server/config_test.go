package server_test

import (
	"testing"
	"time"

	"profile-directory/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    bool
	}{
		{server.BackendAppwrite, true},
		{server.BackendSQL, true},
		{"firebase", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("backend="+tt.backend, func(t *testing.T) {
			assert.Equal(t, tt.want, server.Config{Backend: tt.backend}.IsValidBackend())
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, ":8080", server.Config{Port: "8080"}.Addr())
}

func TestConfig_ShutdownTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, server.Config{}.ShutdownTimeout())
	assert.Equal(t, 3*time.Second, server.Config{ShutdownSeconds: 3}.ShutdownTimeout())
}
