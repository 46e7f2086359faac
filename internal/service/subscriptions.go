package service

// ChangeEvent 进程内状态变更事件（UI 层响应式刷新用）
type ChangeEvent struct {
	Kind string `json:"kind"` // "center" | "guest"
	Op   string `json:"op"`   // "created" | "updated" | "deleted" | "refreshed"
	ID   string `json:"id,omitempty"`
}

// Subscribe 订阅状态变更；返回只读通道与取消函数。
// 投递是非阻塞的：消费慢的订阅者会丢事件（事件只是刷新提示，丢了可以从状态补读）。
func (s *ReliefService) Subscribe() (<-chan ChangeEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan ChangeEvent, 16)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *ReliefService) broadcast(ev ChangeEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
