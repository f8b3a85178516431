package entities

import (
	"testing"
	"time"
)

func TestUserCourseIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	open := &UserCourse{}
	if open.IsExpired(now) {
		t.Fatalf("grant without expiry must never expire")
	}

	future := now.Add(time.Hour)
	if (&UserCourse{ExpiresAt: &future}).IsExpired(now) {
		t.Fatalf("grant expiring in the future is still valid")
	}

	past := now.Add(-time.Hour)
	if !(&UserCourse{ExpiresAt: &past}).IsExpired(now) {
		t.Fatalf("lapsed grant must report expired")
	}
}
