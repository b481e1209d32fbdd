package httpserver

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/neuralpress/internal/model"
)

func TestWithCredential_And_CredentialFromCtx(t *testing.T) {
	t.Parallel()

	if c, ok := CredentialFromCtx(context.Background()); ok || c != nil {
		t.Fatalf("expected no credential in empty ctx")
	}

	want := &model.Credential{ID: uuid.Must(uuid.NewV4()), Tier: model.TierDeveloper}
	got, ok := CredentialFromCtx(WithCredential(context.Background(), want))
	if !ok || got != want {
		t.Fatalf("mismatch: got %v, want %v", got, want)
	}

	bad := context.WithValue(context.Background(), credentialKey, "not-a-credential")
	if c, ok := CredentialFromCtx(bad); ok || c != nil {
		t.Fatalf("expected miss on wrong typed value")
	}
	if _, ok := CredentialFromCtx(WithCredential(context.Background(), nil)); ok {
		t.Fatalf("expected miss on nil credential")
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer np_sk_abc", "np_sk_abc", true},
		{"bearer   np_sk_abc  ", "np_sk_abc", true},
		{"BEARER np_sk_abc", "np_sk_abc", true},
		{"Basic foo", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		got, err := bearerToken(r)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got=%q err=%v", tc.header, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: want error", tc.header)
		}
	}
}
