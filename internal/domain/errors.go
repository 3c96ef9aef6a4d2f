package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 表示单次操作中引用的记录不存在，整个操作失败
	ErrNotFound = errors.New("记录不存在")
	// ErrMalformedFile 表示整个上传文件无法解析，而不是单行的错误
	ErrMalformedFile = errors.New("文件格式错误")
)

// ValidationError 表示某一行记录缺少必填字段或者字段格式错误，
// 只影响这一行，不会中断整个批量操作
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段 %s 缺失或格式错误", e.Field)
}

// DuplicateError 表示邮箱或者工号和已有账户冲突，
// 只影响这一行，不会中断整个批量操作
type DuplicateError struct {
	Field string // "email" 或 "employeeId"
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s 已存在", e.Field)
}

// TransientDeliveryError 表示邮件投递的临时失败，任务会按退避策略重试
type TransientDeliveryError struct {
	Err error
}

func (e *TransientDeliveryError) Error() string {
	return fmt.Sprintf("邮件投递临时失败: %v", e.Err)
}

func (e *TransientDeliveryError) Unwrap() error {
	return e.Err
}

// PermanentDeliveryError 表示邮件投递的永久失败，任务直接进入 dead 状态
type PermanentDeliveryError struct {
	Err error
}

func (e *PermanentDeliveryError) Error() string {
	return fmt.Sprintf("邮件投递永久失败: %v", e.Err)
}

func (e *PermanentDeliveryError) Unwrap() error {
	return e.Err
}
