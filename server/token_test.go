package main

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/isomorphiccat/kemotown/server/store/types"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	globals.tokenSalt = []byte("test-salt")
	defer func() { globals.tokenSalt = nil }()

	uid := types.Uid(424242)
	token := makeSessionToken(uid, time.Hour)

	got, valid := checkSessionToken(token)
	if !valid || got != uid {
		t.Errorf("round trip: uid=%s valid=%v", got.String(), valid)
	}

	// Expired token.
	if _, valid = checkSessionToken(makeSessionToken(uid, -time.Minute)); valid {
		t.Error("expired token must be rejected")
	}

	// A token for the zero uid never authenticates.
	if _, valid = checkSessionToken(makeSessionToken(types.ZeroUid, time.Hour)); valid {
		t.Error("zero-uid token must be rejected")
	}
}

func TestSessionTokenTampering(t *testing.T) {
	globals.tokenSalt = []byte("test-salt")
	defer func() { globals.tokenSalt = nil }()

	uid := types.Uid(424242)
	token := makeSessionToken(uid, time.Hour)

	// Flip one character of the payload.
	replacement := "A"
	if token[5:6] == replacement {
		replacement = "B"
	}
	tampered := token[:5] + replacement + token[6:]
	if _, valid := checkSessionToken(tampered); valid {
		t.Error("tampered token must be rejected")
	}

	// A token signed with a different secret.
	globals.tokenSalt = []byte("other-salt")
	foreign := makeSessionToken(uid, time.Hour)
	globals.tokenSalt = []byte("test-salt")
	if _, valid := checkSessionToken(foreign); valid {
		t.Error("token with a foreign signature must be rejected")
	}

	// Garbage input.
	for _, bad := range []string{"", "short", strings.Repeat("A", 64), "?not-base64?"} {
		if _, valid := checkSessionToken(bad); valid {
			t.Errorf("garbage token %q must be rejected", bad)
		}
	}
}

func TestGetSessionToken(t *testing.T) {
	req, _ := http.NewRequest("GET", "/v0/channels?token=fallback", nil)
	if got := getSessionToken(req); got != "fallback" {
		t.Errorf("form token = %q", got)
	}

	req.Header.Set("Authorization", "Bearer primary")
	if got := getSessionToken(req); got != "primary" {
		t.Errorf("header token = %q", got)
	}

	req, _ = http.NewRequest("GET", "/v0/channels", nil)
	if got := getSessionToken(req); got != "" {
		t.Errorf("absent token = %q", got)
	}
}
