package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// stubHandler is a no-op gRPC handler used in interceptor tests.
func stubHandler(_ context.Context, _ any) (any, error) {
	return "ok", nil
}

var searchInfo = &grpc.UnaryServerInfo{FullMethod: "/querydsl.v1.MemberService/Search"}

func TestAuthInterceptor(t *testing.T) {
	for _, tc := range []struct {
		name   string
		token  string
		method string
		md     metadata.MD // nil means no incoming metadata
		code   codes.Code
	}{
		{"Disabled", "", searchInfo.FullMethod, nil, codes.OK},
		{"HealthExempt", "secret", "/grpc.health.v1.Health/Check", nil, codes.OK},
		{"MissingMetadata", "secret", searchInfo.FullMethod, nil, codes.Unauthenticated},
		{"MissingHeader", "secret", searchInfo.FullMethod, metadata.Pairs("other", "value"), codes.Unauthenticated},
		{"WrongToken", "secret", searchInfo.FullMethod, metadata.Pairs("authorization", "Bearer wrong"), codes.Unauthenticated},
		{"InvalidScheme", "secret", searchInfo.FullMethod, metadata.Pairs("authorization", "Basic secret"), codes.Unauthenticated},
		{"CorrectToken", "secret", searchInfo.FullMethod, metadata.Pairs("authorization", "Bearer secret"), codes.OK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tc.md)
			}
			resp, err := AuthInterceptor(tc.token)(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tc.method}, stubHandler)
			if got := status.Code(err); got != tc.code {
				t.Fatalf("code = %v, want %v (err=%v)", got, tc.code, err)
			}
			if tc.code == codes.OK && resp != "ok" {
				t.Fatalf("expected 'ok', got %v", resp)
			}
		})
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	panicky := func(context.Context, any) (any, error) { panic("boom") }
	_, err := RecoveryInterceptor(context.Background(), nil, searchInfo, panicky)
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", err)
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	var seen string
	capture := func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return "ok", nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "trace-42"))
	if _, err := RequestIDInterceptor(ctx, nil, searchInfo, capture); err != nil {
		t.Fatal(err)
	}
	if seen != "trace-42" {
		t.Errorf("request id = %q, want caller's trace-42", seen)
	}

	if _, err := RequestIDInterceptor(context.Background(), nil, searchInfo, capture); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(seen, "req-") {
		t.Errorf("request id = %q, want a generated req- id", seen)
	}
}

// --- HTTP middleware ---

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthMiddleware(t *testing.T) {
	for _, tc := range []struct {
		name   string
		token  string
		method string
		path   string
		header string
		want   int
	}{
		{"Disabled", "", http.MethodGet, "/v1/members", "", http.StatusOK},
		{"NoHeader", "secret", http.MethodGet, "/v1/members", "", http.StatusUnauthorized},
		{"WrongToken", "secret", http.MethodGet, "/v1/members", "Bearer wrong", http.StatusUnauthorized},
		{"InvalidScheme", "secret", http.MethodGet, "/v1/members", "Basic secret", http.StatusUnauthorized},
		{"CorrectToken", "secret", http.MethodPost, "/v1/teams", "Bearer secret", http.StatusOK},
		{"HealthExempt", "secret", http.MethodGet, "/v1/health", "", http.StatusOK},
		{"MetricsExempt", "secret", http.MethodGet, "/metrics", "", http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			handler := AuthMiddleware(tc.token, http.HandlerFunc(okHandler))
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d; body: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"Generated", "", false},
		{"Kept", "abc-123", true},
		{"Rejected", "bad id\twith tab", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got != seen {
				t.Errorf("header %q != context %q", got, seen)
			}
			if tc.keep && got != tc.incoming {
				t.Errorf("request id = %q, want %q", got, tc.incoming)
			}
			if !tc.keep && !strings.HasPrefix(got, "req-") {
				t.Errorf("request id = %q, want generated", got)
			}
		})
	}
}
