package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/architeacher/device-inventory/internal/config"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	MetadataKeyRequestID = "x-request-id"

	healthServicePrefix = "/grpc.health.v1.Health/"
)

// ContextExtractorInterceptor carries the caller's request ID into the
// context, generating one when absent.
func ContextExtractorInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var requestID string

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if requestIDs := md.Get(MetadataKeyRequestID); len(requestIDs) > 0 {
				requestID = requestIDs[0]
			}
		}

		if requestID == "" {
			requestID = uuid.NewString()
		}

		return handler(logger.ContextWithRequestID(ctx, requestID), req)
	}
}

func AccessLogInterceptor(log logger.Logger, cfg config.AccessLog) grpc.UnaryServerInterceptor {
	log = log.Component("grpc")

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !cfg.Enabled || (!cfg.LogHealthChecks && isHealthCheck(info.FullMethod)) {
			return handler(ctx, req)
		}

		start := time.Now()
		resp, err := handler(ctx, req)

		reqLogger := log.WithContext(ctx)
		event := reqLogger.Info()

		if err != nil {
			event = reqLogger.Warn()
		}

		event = event.
			Str("method", info.FullMethod).
			Dur("duration", time.Since(start))

		if err != nil {
			st, _ := status.FromError(err)
			event.Str("grpc_code", st.Code().String()).
				Str("error", st.Message()).
				Msg("gRPC request failed")
		} else {
			event.Msg("gRPC request completed")
		}

		return resp, err
	}
}

func isHealthCheck(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, healthServicePrefix)
}
