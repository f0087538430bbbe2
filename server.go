package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/connectivity/network"
	"git.fiblab.net/sim/connectivity/store"
	"github.com/gorilla/mux"
)

const (
	FLOODFILL_PROCEDURE = "/floodfill_pt/"
	NODE_COUNT_PATH     = "/get_node_id_count/"
)

type ConnectivityServer struct {
	engine       *network.Engine
	maxBodyBytes int
}

func NewConnectivityServer(engine *network.Engine, maxBodyBytes int) *ConnectivityServer {
	return &ConnectivityServer{engine: engine, maxBodyBytes: maxBodyBytes}
}

// Handler 注册全部HTTP路由
func (s *ConnectivityServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.Index).Methods(http.MethodGet)
	r.HandleFunc(NODE_COUNT_PATH, s.GetNodeIDCount).Methods(http.MethodGet)
	r.Handle(FLOODFILL_PROCEDURE, connect.NewUnaryHandler(
		FLOODFILL_PROCEDURE,
		s.Floodfill,
		connect.WithCodec(jsonCodec{}),
		connect.WithReadMaxBytes(s.maxBodyBytes),
		connect.WithRecover(recoverFloodfill),
	)).Methods(http.MethodPost)
	r.Use(loggingMiddleware)
	return r
}

// 修改网络期间panic说明共享网络已不可信，只能退出进程
func recoverFloodfill(ctx context.Context, spec connect.Spec, header http.Header, p any) error {
	log.Fatalf("panic in %s, the shared network can no longer be trusted: %v", spec.Procedure, p)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("%v", p))
}

func (s *ConnectivityServer) Floodfill(
	ctx context.Context,
	req *connect.Request[FloodfillRequest],
) (*connect.Response[FloodfillResponse], error) {
	in, err := req.Msg.ToNetworkRequest()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	log.Debugf("floodfill request: %d origins, year %d, trip start %d", len(in.Origins), in.Year, in.TripStartSeconds)
	scores, err := s.engine.Run(ctx, in)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make(FloodfillResponse, len(scores))
	for i, score := range scores {
		out[i] = FloodfillResult(score)
	}
	return connect.NewResponse(&out), nil
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, network.ErrInvalidRequest):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, network.ErrHistoricalEdit):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, network.ErrYearUnavailable):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func (s *ConnectivityServer) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("App is listening"))
}

// GetNodeIDCount 返回当前网络的节点数
func (s *ConnectivityServer) GetNodeIDCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.NodeCount())
}
