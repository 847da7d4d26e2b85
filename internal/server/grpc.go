package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/querydsl/internal/model"
)

// MemberServiceName is the fully qualified gRPC service name. Requests and
// responses are google.protobuf.Struct messages whose fields follow the JSON
// field names of the HTTP API.
const MemberServiceName = "querydsl.v1.MemberService"

// memberService is the handler type checked by grpc.RegisterService.
type memberService interface {
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchPage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateTeam(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ memberService = (*MemberServer)(nil)

var memberServiceDesc = grpc.ServiceDesc{
	ServiceName: MemberServiceName,
	HandlerType: (*memberService)(nil),
	Methods: []grpc.MethodDesc{
		structMethod("Search", memberService.Search),
		structMethod("SearchPage", memberService.SearchPage),
		structMethod("GetMember", memberService.GetMember),
		structMethod("CreateTeam", memberService.CreateTeam),
		structMethod("CreateMember", memberService.CreateMember),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "querydsl/v1/member.proto",
}

// structMethod adapts a Struct-in/Struct-out method to a grpc.MethodDesc,
// routing the call through the server's interceptor chain.
func structMethod(name string, call func(memberService, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + MemberServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			svc := srv.(memberService)
			if interceptor == nil {
				return call(svc, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(svc, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// NewGRPCServer creates a gRPC server with standard interceptors and
// registers the MemberService, the health service and reflection.
func NewGRPCServer(ms *MemberServer, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			RequestIDInterceptor,
			MetricsInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	srv.RegisterService(&memberServiceDesc, ms)

	hs := health.NewServer()
	hs.SetServingStatus(MemberServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv
}

// grpcError maps an operation error to a status, mirroring writeFailure.
func grpcError(ctx context.Context, err error, resource string) error {
	var (
		ie inputError
		ve *model.ValidationError
	)
	switch {
	case errors.As(err, &ie), errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		return status.Error(codes.NotFound, resource+" not found")
	default:
		slog.Error("rpc failed", "request_id", RequestIDFromContext(ctx), "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// Search returns {"members": [...]} for a condition struct
// {username, team_name, age_goe, age_loe}.
func (s *MemberServer) Search(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var cond model.MemberSearchCondition
	if err := fromStruct(in, &cond); err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	rows, err := s.store.Search(ctx, cond)
	if err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	if rows == nil {
		rows = []*model.MemberTeam{}
	}
	return toStruct(map[string]any{"members": rows})
}

// SearchPage takes {condition, page: {page, size, sort}, strategy} and
// returns the page in its HTTP form.
func (s *MemberServer) SearchPage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := searchPageInput{Page: model.PageRequest{Size: model.DefaultPageSize}}
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	p, err := s.searchPage(ctx, req)
	if err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	return toStruct(pageToBody(p))
}

// GetMember takes {id} and returns the member with its team.
func (s *MemberServer) GetMember(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id must be a positive integer")
	}
	m, err := s.store.GetMember(ctx, req.ID)
	if err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	return toStruct(m)
}

// CreateTeam takes {name}.
func (s *MemberServer) CreateTeam(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req createTeamInput
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(ctx, err, "team")
	}
	team, err := s.createTeam(ctx, req)
	if err != nil {
		return nil, grpcError(ctx, err, "team")
	}
	return toStruct(team)
}

// CreateMember takes {username, age, team_id}.
func (s *MemberServer) CreateMember(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req createMemberInput
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	m, err := s.createMember(ctx, req)
	if err != nil {
		return nil, grpcError(ctx, err, "member")
	}
	return toStruct(m)
}
