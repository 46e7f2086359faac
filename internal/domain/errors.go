package domain

import "errors"

// 数据层错误分类：
// - ErrNotFound 实体不存在，直接回传给调用方展示
// - ErrBackendUnavailable 远端不可达/超时/响应异常，只作为降级信号在 selector 边界消化
// - ErrValidation 引用完整性错误（如悬空 centerId），实体不会被创建
var (
	ErrNotFound           = errors.New("not found")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrValidation         = errors.New("validation failed")
)

// IsNotFound 判断 err 链上是否为 ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable 判断 err 链上是否为 ErrBackendUnavailable
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// IsValidation 判断 err 链上是否为 ErrValidation
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
