package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", "https://api.favisend.com"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=alt.json", "-t", "10"},
			allowed: []string{"--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "--config=alt.json"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "--config=alt.json"},
		},
		{
			name:    "several allowed flags keep order",
			args:    []string{"-a", "http://localhost:8080", "-d", "dl", "-c", "one.json", "-c", "two.json"},
			allowed: []string{"-a", "-c"},
			want:    []string{"-a", "http://localhost:8080", "-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/favisend.json", ConfigPath([]string{"-c", "/etc/favisend.json"}))
	assert.Equal(t, "long.json", ConfigPath([]string{"-a", "x", "-config", "long.json"}))
	assert.Equal(t, "eq.json", ConfigPath([]string{"--config=eq.json"}))
	assert.Equal(t, "2.json", ConfigPath([]string{"-c", "1.json", "-config", "2.json"}))
	assert.Empty(t, ConfigPath([]string{"-x", "1"}))
}
