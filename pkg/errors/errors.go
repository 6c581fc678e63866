package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReadOnlyStore 当前驱动不支持写入
var ErrReadOnlyStore = errors.New("当前表格驱动只读，不支持写入")

// ErrRowNotFound 按主键定位行失败
var ErrRowNotFound = errors.New("未找到对应记录行")

// ── 存储边界错误 ──

// FetchError 读取表格失败（网络、鉴权、工作表不存在、必需列缺失）
// 调用方以空关系代替，并向用户展示告警
type FetchError struct {
	Sheet string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("读取工作表 %q 失败: %v", e.Sheet, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError 后端拒绝或未能完成写入，本次提交终止，不重试
type WriteError struct {
	Sheet string
	Op    string // append | update | delete
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("写入工作表 %q 失败 (%s): %v", e.Sheet, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ── 校验错误 ──

// FieldError 单个字段的校验失败
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError 写入前的字段校验失败，未发生任何写操作
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "字段校验失败: " + strings.Join(parts, "; ")
}

// FieldNames 返回出错字段名列表
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

// ── 非致命告警 ──

// WarningKind 告警类型
type WarningKind string

const (
	WarningKeyMismatch  WarningKind = "key_mismatch"  // 活动记录的编号在名册中不存在
	WarningDuplicateKey WarningKind = "duplicate_key" // 名册中编号重复
	WarningFetchFailed  WarningKind = "fetch_failed"  // 某个关系读取失败，以空关系展示
)

// Warning 随视图返回的非致命提示
type Warning struct {
	Kind         WarningKind `json:"kind"`
	Sheet        string      `json:"sheet,omitempty"`
	SerialNumber string      `json:"serial_number,omitempty"`
	Message      string      `json:"message"`
}
