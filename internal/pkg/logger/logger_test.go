package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"password", "hunter2", "alias", "article", "dsn", "postgres://app:pw@db:5432/cms"})
	if len(out) != 6 {
		t.Fatalf("len: want=6 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", out[1])
	}
	if out[3] != "article" {
		t.Fatalf("alias should pass through, got=%v", out[3])
	}
	if out[5] != "postgres://app:xxxxx@db:5432/cms" {
		t.Fatalf("dsn: got=%v", out[5])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"id", 3, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestNewSilent(t *testing.T) {
	l, err := New("silent")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.With("repo", "x").Info("discarded", "token", "abc")
}
