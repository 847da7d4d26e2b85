package sync

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/alfredjeanlab/querydsl/internal/model"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockSource is a minimal in-memory Source for sync tests.
type mockSource struct {
	teams   []*model.Team
	members []*model.Member
	err     error

	exports atomic.Int64 // ListTeams calls
}

func (m *mockSource) ListTeams(_ context.Context) ([]*model.Team, error) {
	m.exports.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return append([]*model.Team(nil), m.teams...), nil
}

func (m *mockSource) ListMembers(_ context.Context) ([]*model.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]*model.Member(nil), m.members...), nil
}

// fakeS3 records PutObject calls.
type fakeS3 struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *in.Bucket
	f.key = *in.Key
	f.contentType = *in.ContentType
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

var errStore = errors.New("store unavailable")

func int64Ptr(v int64) *int64 { return &v }
