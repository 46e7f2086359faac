package httpapi

import (
	"net/http"
	"strings"

	"relief-data/internal/service"

	"go.uber.org/zap"
)

const centersPrefix = "/relief/api/v1/centers"

// CenterHandler 救援中心管理 Handler
type CenterHandler struct {
	svc    *service.ReliefService
	logger *zap.Logger
}

// NewCenterHandler 创建救援中心 Handler
func NewCenterHandler(svc *service.ReliefService, logger *zap.Logger) *CenterHandler {
	return &CenterHandler{svc: svc, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *CenterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch {
	case r.URL.Path == centersPrefix && r.Method == http.MethodGet:
		h.ListCenters(w, r)
	case r.URL.Path == centersPrefix && r.Method == http.MethodPost:
		h.CreateCenter(w, r)
	case strings.HasSuffix(r.URL.Path, "/guests") && r.Method == http.MethodGet:
		h.ListCenterGuests(w, r)
	case strings.HasPrefix(r.URL.Path, centersPrefix+"/") && r.Method == http.MethodGet:
		h.GetCenter(w, r)
	case strings.HasPrefix(r.URL.Path, centersPrefix+"/") && r.Method == http.MethodPut:
		h.UpdateCenter(w, r)
	case strings.HasPrefix(r.URL.Path, centersPrefix+"/") && r.Method == http.MethodDelete:
		h.DeleteCenter(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func centerID(path string) string {
	id := strings.TrimPrefix(path, centersPrefix+"/")
	return strings.TrimSuffix(id, "/guests")
}

// ListCenters 中心列表（离线时返回最后已知状态，永不 5xx）
func (h *CenterHandler) ListCenters(w http.ResponseWriter, r *http.Request) {
	centers := h.svc.GetAllCenters(r.Context())
	writeJSON(w, http.StatusOK, Ok(centers))
}

// GetCenter 单中心详情
func (h *CenterHandler) GetCenter(w http.ResponseWriter, r *http.Request) {
	id := centerID(r.URL.Path)
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	center, err := h.svc.GetCenterByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(center))
}

// CreateCenter 新建中心
func (h *CenterHandler) CreateCenter(w http.ResponseWriter, r *http.Request) {
	var req service.AddCenterRequest
	if !readJSON(w, r, &req) {
		return
	}
	center, err := h.svc.AddCenter(r.Context(), req)
	if err != nil {
		h.logger.Warn("CreateCenter failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(center))
}

// UpdateCenter 部分更新中心
func (h *CenterHandler) UpdateCenter(w http.ResponseWriter, r *http.Request) {
	id := centerID(r.URL.Path)
	var req service.UpdateCenterRequest
	if !readJSON(w, r, &req) {
		return
	}
	center, err := h.svc.UpdateCenter(r.Context(), id, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(center))
}

// DeleteCenter 删除中心（级联删除在住人员，幂等）
func (h *CenterHandler) DeleteCenter(w http.ResponseWriter, r *http.Request) {
	id := centerID(r.URL.Path)
	if err := h.svc.DeleteCenter(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}

// ListCenterGuests 某中心的人员名册
func (h *CenterHandler) ListCenterGuests(w http.ResponseWriter, r *http.Request) {
	id := centerID(r.URL.Path)
	guests := h.svc.GetGuestsByCenter(r.Context(), id)
	writeJSON(w, http.StatusOK, Ok(guests))
}
