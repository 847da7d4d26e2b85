package client

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// memberService is the fully qualified name of the server's gRPC service.
const memberService = "querydsl.v1.MemberService"

// GRPCClient implements MembersClient using the gRPC transport. Messages are
// google.protobuf.Struct values carrying the same fields as the HTTP API.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient connects to the given gRPC address and returns a client.
// When token is non-empty it is sent as a Bearer token on every call.
func NewGRPCClient(addr, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	if token != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(bearerInterceptor(token)))
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn}, nil
}

func bearerInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// call encodes in as a Struct, invokes method and decodes the reply into out.
func (c *GRPCClient) call(ctx context.Context, method string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req := &structpb.Struct{}
	if err := protojson.Unmarshal(data, req); err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	reply := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, "/"+memberService+"/"+method, req, reply); err != nil {
		return err
	}

	data, err = protojson.Marshal(reply)
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// --- Search ---

func (c *GRPCClient) Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error) {
	var resp struct {
		Members []*model.MemberTeam `json:"members"`
	}
	if err := c.call(ctx, "Search", cond, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *GRPCClient) SearchPage(ctx context.Context, req *SearchPageRequest) (*Page, error) {
	var page Page
	if err := c.call(ctx, "SearchPage", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// --- Members ---

func (c *GRPCClient) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	var m model.Member
	if err := c.call(ctx, "GetMember", map[string]int64{"id": id}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *GRPCClient) CreateMember(ctx context.Context, req *CreateMemberRequest) (*model.Member, error) {
	var m model.Member
	if err := c.call(ctx, "CreateMember", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Teams ---

func (c *GRPCClient) CreateTeam(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	if err := c.call(ctx, "CreateTeam", map[string]string{"name": name}, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// --- Health ---

// Health reports the serving status of the member service.
func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: memberService})
	if err != nil {
		return "", err
	}
	return resp.GetStatus().String(), nil
}
