package httpapi

import (
	"net/http"
	"strings"

	"relief-data/internal/service"

	"go.uber.org/zap"
)

const guestsPrefix = "/relief/api/v1/guests"

// GuestHandler 人员登记 Handler
type GuestHandler struct {
	svc    *service.ReliefService
	logger *zap.Logger
}

// NewGuestHandler 创建人员登记 Handler
func NewGuestHandler(svc *service.ReliefService, logger *zap.Logger) *GuestHandler {
	return &GuestHandler{svc: svc, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *GuestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == guestsPrefix && r.Method == http.MethodGet:
		h.SearchGuests(w, r)
	case r.URL.Path == guestsPrefix && r.Method == http.MethodPost:
		h.CreateGuest(w, r)
	case strings.HasPrefix(r.URL.Path, guestsPrefix+"/") && r.Method == http.MethodGet:
		h.GetGuest(w, r)
	case strings.HasPrefix(r.URL.Path, guestsPrefix+"/") && r.Method == http.MethodPut:
		h.UpdateGuest(w, r)
	case strings.HasPrefix(r.URL.Path, guestsPrefix+"/") && r.Method == http.MethodDelete:
		h.DeleteGuest(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func guestID(path string) string {
	return strings.TrimPrefix(path, guestsPrefix+"/")
}

// SearchGuests 全量/搜索人员列表（?q= 为空时返回全部）
func (h *GuestHandler) SearchGuests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	guests := h.svc.SearchGuests(r.Context(), query)
	writeJSON(w, http.StatusOK, Ok(guests))
}

// GetGuest 单人员详情
func (h *GuestHandler) GetGuest(w http.ResponseWriter, r *http.Request) {
	id := guestID(r.URL.Path)
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	guest, err := h.svc.GetGuestByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(guest))
}

// CreateGuest 登记人员（返回时所属中心容量已同步完成）
func (h *GuestHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req service.AddGuestRequest
	if !readJSON(w, r, &req) {
		return
	}
	guest, err := h.svc.AddGuest(r.Context(), req)
	if err != nil {
		h.logger.Warn("CreateGuest failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(guest))
}

// UpdateGuest 部分更新；centerId 变化按转移处理
func (h *GuestHandler) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	id := guestID(r.URL.Path)
	var req service.UpdateGuestRequest
	if !readJSON(w, r, &req) {
		return
	}
	guest, err := h.svc.UpdateGuest(r.Context(), id, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(guest))
}

// DeleteGuest 删除人员（幂等）
func (h *GuestHandler) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	id := guestID(r.URL.Path)
	if err := h.svc.DeleteGuest(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(true))
}
