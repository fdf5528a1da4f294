// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginProtection_AccountLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	username := "victim"

	if locked, _ := lp.IsAccountLocked(username); locked {
		t.Error("account should not start locked")
	}

	if locked, _ := lp.RecordFailedAttempt(username); locked {
		t.Error("should not lock after 1 attempt")
	}
	if locked, _ := lp.RecordFailedAttempt(username); locked {
		t.Error("should not lock after 2 attempts")
	}

	locked, duration := lp.RecordFailedAttempt(username)
	if !locked {
		t.Fatal("should lock after 3 attempts")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want %v", duration, time.Minute)
	}

	if locked, remaining := lp.IsAccountLocked(username); !locked || remaining <= 0 {
		t.Errorf("account should be locked with time remaining, got locked=%v remaining=%v", locked, remaining)
	}
}

func TestLoginProtection_SuccessClearsAttempts(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	username := "user"
	lp.RecordFailedAttempt(username)
	lp.RecordFailedAttempt(username)

	if got := lp.GetRemainingAttempts(username); got != 1 {
		t.Errorf("remaining attempts = %d, want 1", got)
	}

	lp.RecordSuccessfulLogin(username)

	if got := lp.GetRemainingAttempts(username); got != 3 {
		t.Errorf("remaining attempts after success = %d, want 3", got)
	}
}

func TestLoginProtection_ExponentialBackoff(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 1,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Hour,
	})

	username := "repeat-offender"

	_, first := lp.RecordFailedAttempt(username)
	if first != time.Minute {
		t.Errorf("first lockout = %v, want %v", first, time.Minute)
	}

	// Simulate the lockout expiring
	lp.attemptsMu.Lock()
	lp.failedAttempts[username].lockedUntil = time.Now().Add(-time.Second)
	lp.attemptsMu.Unlock()

	_, second := lp.RecordFailedAttempt(username)
	if second != 2*time.Minute {
		t.Errorf("second lockout = %v, want %v", second, 2*time.Minute)
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 100,
		IPBurst:     2,
	})

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// GET requests bypass the limiter
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/login", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET request %d: status = %d, want 200", i, rec.Code)
		}
	}

	// POST burst of 2 allowed, third rejected
	statuses := make([]int, 3)
	for i := range statuses {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.Header.Set("X-Real-IP", "10.0.0.2")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses[i] = rec.Code
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("burst requests should pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want %d", statuses[2], http.StatusTooManyRequests)
	}
}

func TestGlobalRateLimiter_PerIP(t *testing.T) {
	rl := NewGlobalRateLimiter(100, 1)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("X-Real-IP", "10.1.1.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// Distinct IP is unaffected
	other := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	other.Header.Set("X-Real-IP", "10.1.1.2")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	if got := getClientIP(req); got != "192.0.2.1:1234" {
		t.Errorf("getClientIP = %q, want RemoteAddr", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	if got := getClientIP(req); got != "203.0.113.5" {
		t.Errorf("getClientIP = %q, want X-Forwarded-For value", got)
	}

	req.Header.Set("X-Real-IP", "198.51.100.7")
	if got := getClientIP(req); got != "198.51.100.7" {
		t.Errorf("getClientIP = %q, want X-Real-IP value", got)
	}
}
