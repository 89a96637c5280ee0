package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NewMemoryStore()

	loc, err := s.Put(ctx, "sess-1", "/v1/scope.md", []byte("# Scope"), "text/markdown")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if loc != "memory://sess-1/v1/scope.md" {
		t.Errorf("location = %q", loc)
	}
	if _, err := s.Put(ctx, "sess-1", "v1/scope.json", []byte("{}"), "application/json"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(ctx, "sess-2", "v1/scope.md", []byte("other"), ""); err != nil {
		t.Fatal(err)
	}

	data, err := s.Get(ctx, "sess-1", "v1/scope.md")
	if err != nil || string(data) != "# Scope" {
		t.Errorf("Get = %q, %v", data, err)
	}
	if _, err := s.Get(ctx, "sess-1", "v2/scope.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	names, err := s.List(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "v1/scope.json,v1/scope.md" {
		t.Errorf("List = %v", names)
	}
}

func TestMemoryStoreCopiesContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	s.Put(ctx, "s", "f", buf, "")
	buf[0] = 'x'
	got, _ := s.Get(ctx, "s", "f")
	if string(got) != "abc" {
		t.Errorf("stored content changed: %q", got)
	}
}

func TestKeysRequired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, err := s.Put(ctx, " ", "f", nil, ""); err == nil {
		t.Error("expected error for blank session")
	}
	if _, err := s.Get(ctx, "s", ""); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestNewS3StoreValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"no endpoint", S3Config{AccessKey: "a", SecretKey: "b", Bucket: "c"}, "endpoint"},
		{"no keys", S3Config{Endpoint: "localhost:9000", Bucket: "c"}, "access key"},
		{"no bucket", S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Store(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}

	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "scopes"})
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	if s.region != "us-east-1" {
		t.Errorf("region = %q", s.region)
	}
}
