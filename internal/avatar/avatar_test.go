package avatar

import "testing"

func TestURL(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{
			name:  "known digest",
			email: "a@x.com",
			// md5("a@x.com")
			want: "https://gravatar.com/avatar/743173788aa9166801df2e18f0e7ff24?s=128",
		},
		{
			name:  "case and whitespace normalized",
			email: "  A@X.COM ",
			want:  "https://gravatar.com/avatar/743173788aa9166801df2e18f0e7ff24?s=128",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URL(tt.email); got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestURLDeterministic(t *testing.T) {
	if URL("bob@example.com") != URL("bob@example.com") {
		t.Error("same email must always derive the same avatar URL")
	}
	if URL("bob@example.com") == URL("carol@example.com") {
		t.Error("different emails should derive different avatar URLs")
	}
}
