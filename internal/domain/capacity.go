package domain

import "time"

// SyncCapacity 容量同步（纯函数）：根据 guests 重算 center 的派生字段
// - CurrentGuests = 属于该中心的 guest 数
// - AvailableCapacity = TotalCapacity - CurrentGuests（同步前可能短暂为负）
// - CurrentGuests >= TotalCapacity 时 Status 置为 full；
//   从 full 退出时恢复为 active（full 之前的历史状态不保存），
//   其它状态（inactive/maintenance）不受占用变化影响
// guests 不要求预过滤，函数内部只统计 CenterID 匹配的记录
func SyncCapacity(center RescueCenter, guests []Guest) RescueCenter {
	count := 0
	for i := range guests {
		if guests[i].CenterID == center.ID {
			count++
		}
	}

	center.CurrentGuests = count
	center.AvailableCapacity = center.TotalCapacity - count

	if count >= center.TotalCapacity {
		center.Status = CenterStatusFull
	} else if center.Status == CenterStatusFull {
		center.Status = CenterStatusActive
	}

	now := time.Now().UTC()
	center.UpdatedAt = now
	center.LastUpdated = now
	return center
}
