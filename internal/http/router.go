package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterReliefRoutes 注册救灾数据 API 路由
func (r *Router) RegisterReliefRoutes(centers *CenterHandler, guests *GuestHandler, stats *StatsHandler) {
	// centers（列表/创建/详情/更新/删除 + 按中心的人员名册）
	r.Handle(centersPrefix, centers.ServeHTTP)
	r.Handle(centersPrefix+"/", centers.ServeHTTP)

	// guests（搜索/登记/详情/更新/删除）
	r.Handle(guestsPrefix, guests.ServeHTTP)
	r.Handle(guestsPrefix+"/", guests.ServeHTTP)

	// 看板与同步控制
	r.Handle("/relief/api/v1/stats", methodGuard(http.MethodGet, stats.GetStats))
	r.Handle("/relief/api/v1/status", methodGuard(http.MethodGet, stats.GetStatus))
	r.Handle("/relief/api/v1/refresh", methodGuard(http.MethodPost, stats.Refresh))
	r.Handle("/relief/api/v1/resync", methodGuard(http.MethodPost, stats.Resync))
	r.Handle("/relief/api/v1/reconnect", methodGuard(http.MethodPost, stats.Reconnect))
	r.Handle("/relief/api/v1/export/roster", methodGuard(http.MethodGet, stats.ExportRoster))

	// 存活探针
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func methodGuard(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}
