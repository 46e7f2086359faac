package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"relief-data/internal/service"

	"go.uber.org/zap"
)

// StatsHandler 看板统计 / 同步状态 / 名册导出 Handler
type StatsHandler struct {
	svc    *service.ReliefService
	logger *zap.Logger
}

// NewStatsHandler 创建统计 Handler
func NewStatsHandler(svc *service.ReliefService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// GetStats 看板聚合指标
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.svc.GetDisasterStats(r.Context())))
}

// GetStatus 离线标记 + last_sync
func (h *StatsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.svc.Status(r.Context())))
}

// Refresh 强制从最优后端重拉（失败是 no-op，不报错）
func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.svc.RefreshData(r.Context())
	writeJSON(w, http.StatusOK, Ok(h.svc.Status(r.Context())))
}

// Resync 手动触发全量容量重算
func (h *StatsHandler) Resync(w http.ResponseWriter, r *http.Request) {
	h.svc.ResyncCapacity(r.Context())
	writeJSON(w, http.StatusOK, Ok(true))
}

// Reconnect 重新探测远端；返回是否恢复在线
func (h *StatsHandler) Reconnect(w http.ResponseWriter, r *http.Request) {
	restored := h.svc.RetryConnection(r.Context())
	writeJSON(w, http.StatusOK, Ok(map[string]bool{
		"restored": restored,
		"offline":  h.svc.IsOffline(),
	}))
}

// ExportRoster 导出中心+人员名册 Excel
func (h *StatsHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportRoster(r.Context())
	if err != nil {
		h.logger.Error("ExportRoster failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	filename := fmt.Sprintf("relief-roster-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
