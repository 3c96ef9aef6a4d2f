package utils

import (
	"strings"
	"testing"
)

func TestGenerateEmailPrefixFromChineseName(t *testing.T) {
	prefix := GenerateEmailPrefixFromChineseName("张三")
	if !strings.HasPrefix(prefix, "zhangsan") {
		t.Fatalf("expected prefix to start with zhangsan, got %s", prefix)
	}
	// 拼音后面应该拼上 1 到 3 位随机数字
	suffix := strings.TrimPrefix(prefix, "zhangsan")
	if len(suffix) < 1 || len(suffix) > 3 {
		t.Fatalf("expected 1 to 3 trailing digits, got %q", suffix)
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			t.Fatalf("expected digits, got %q", suffix)
		}
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	password := GenerateRandomPassword(12)
	if len(password) != 12 {
		t.Fatalf("expected length 12, got %d", len(password))
	}
	for _, c := range password {
		if !strings.ContainsRune(string(letters), c) {
			t.Fatalf("unexpected character %q in password", c)
		}
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("password", "example.com")
	if err != nil {
		t.Fatalf("GenerateRandomUser error: %v", err)
	}
	if user.FullName == "" {
		t.Fatalf("expected non-empty full name")
	}
	if !strings.HasSuffix(user.Email, "@example.com") {
		t.Fatalf("expected email domain example.com, got %s", user.Email)
	}
	if user.PasswordHash == "password" {
		t.Fatalf("expected password to be hashed")
	}
}

func TestGenerateRandomTraining(t *testing.T) {
	training := GenerateRandomTraining()
	if !training.EndDate.After(training.StartDate) {
		t.Fatalf("expected end date after start date")
	}
	if err := ValidateTrainingSchedule(training); err != nil {
		t.Fatalf("expected generated training to be valid, got %v", err)
	}
}
