package errors

import "errors"

// ErrAlreadyResolved 状态竞争冲突：记录已不处于 pending 状态
// （用户取消与定时触发相互竞争时，后提交的一方得到此错误）
var ErrAlreadyResolved = errors.New("记录已被处理，状态不再是 pending")
