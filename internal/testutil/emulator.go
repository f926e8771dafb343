// Package testutil wires tests to the local Firebase emulator suite.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"
)

const (
	AuthEmulatorHost      = "127.0.0.1:7110"
	FirestoreEmulatorHost = "127.0.0.1:7130"
	StorageEmulatorHost   = "127.0.0.1:7150"
	ProjectID             = "demo-test-project"
	StorageBucket         = ProjectID + ".appspot.com"
	fakeAPIKey            = "fake-api-key" //nolint:gosec // emulator only
)

func reachable(host string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// SkipIfFirestoreUnavailable skips the test when the Firestore emulator is down.
func SkipIfFirestoreUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(FirestoreEmulatorHost) {
		t.Skip("Firestore emulator not available")
	}
}

// SkipIfAuthUnavailable skips the test when the Auth emulator is down.
func SkipIfAuthUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(AuthEmulatorHost) {
		t.Skip("Auth emulator not available")
	}
}

// SkipIfStorageUnavailable skips the test when the Storage emulator is down.
func SkipIfStorageUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(StorageEmulatorHost) {
		t.Skip("Storage emulator not available")
	}
}

// SetupEmulator points the Admin SDK and GCS client at the emulators.
func SetupEmulator(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", AuthEmulatorHost)
	t.Setenv("FIRESTORE_EMULATOR_HOST", FirestoreEmulatorHost)
	t.Setenv("STORAGE_EMULATOR_HOST", StorageEmulatorHost)
}

func emulatorDelete(t *testing.T, url string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s: %v", url, err)
	}
	_ = resp.Body.Close()
}

// ClearAccounts removes every user from the Auth emulator.
func ClearAccounts(t *testing.T) {
	t.Helper()
	emulatorDelete(t, fmt.Sprintf("http://%s/emulator/v1/projects/%s/accounts", AuthEmulatorHost, ProjectID))
}

// ClearFirestore removes every document from the Firestore emulator.
func ClearFirestore(t *testing.T) {
	t.Helper()
	emulatorDelete(t, fmt.Sprintf("http://%s/emulator/v1/projects/%s/databases/(default)/documents",
		FirestoreEmulatorHost, ProjectID))
}

// SignUpResponse is the emulator's accounts:signUp answer.
type SignUpResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

// CreateTestUser registers an email/password user in the Auth emulator.
func CreateTestUser(t *testing.T, email, password string) *SignUpResponse {
	t.Helper()
	url := fmt.Sprintf("http://%s/identitytoolkit.googleapis.com/v1/accounts:signUp?key=%s",
		AuthEmulatorHost, fakeAPIKey)
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign up: unexpected status %d", resp.StatusCode)
	}

	var result SignUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &result
}
