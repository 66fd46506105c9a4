package redact

import (
	"testing"
)

func TestShouldMask(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"GITHUB_TOKEN", true},
		{"api_key", true},
		{"db_password", true},
		{"Authorization", true},
		{"ssh_private", true},

		{"command", false},
		{"file_path", false},
		{"description", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := ShouldMask(tt.key); got != tt.want {
				t.Errorf("ShouldMask(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", "********"},
		{"abcd", "********"},
		{"abcde", "****bcde"},
		{"ghp_secrettoken", "****oken"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := MaskValue(tt.value); got != tt.want {
				t.Errorf("MaskValue(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no tokens unchanged",
			in:   "Bash:  go test ./...",
			want: "Bash:  go test ./...",
		},
		{
			name: "bare token masked",
			in:   "curl -H ghp_abcdef123456 https://api.github.com",
			want: "curl -H ****3456 https://api.github.com",
		},
		{
			name: "assignment is one word",
			in:   `export OPENAI_API_KEY="sk-live-9999"`,
			want: `export OPENAI_API_KEY="sk-live-9999"`,
		},
		{
			name: "single quoted token masked",
			in:   "echo 'sk-live-9999'",
			want: "echo ****9999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestField(t *testing.T) {
	if got := Field("api_key", "abcdef"); got != "****cdef" {
		t.Errorf("Field(api_key) = %q", got)
	}
	if got := Field("command", "ls -la"); got != "ls -la" {
		t.Errorf("Field(command) = %q", got)
	}
	if got := Field("command", "gh auth ghp_zzzz1111"); got != "gh auth ****1111" {
		t.Errorf("Field(command) with token = %q", got)
	}
}
