package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）、模块（Module）和可选的底层原因（Err）
//   - 支持 errors.Is / errors.As，以及 IsXXX 检查函数
//
// 使用场景：
//   - Catalog 错误：NOT_FOUND（反馈引用了目录中不存在的菜谱）
//   - Store 错误：NOT_FOUND（KV 层）、IO_FAILURE（读写失败）
//   - Profile 错误：MALFORMED（持久化数据结构无效）
//   - 输入错误：INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "IO_FAILURE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "catalog", "profile"）
	Err     error  // 底层原因，可为 nil
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 按 Module + Code 匹配，因此 errors.Is(err, ErrStoreIO) 对任何 IO_FAILURE 都成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// Wrap 返回携带底层原因与补充信息的同类错误。
func (e *DomainError) Wrap(err error, format string, args ...any) *DomainError {
	msg := e.Message
	if format != "" {
		msg = fmt.Sprintf("%s: %s", e.Message, fmt.Sprintf(format, args...))
	}
	return &DomainError{Code: e.Code, Module: e.Module, Message: msg, Err: err}
}

// GetDomainError 获取错误链中的第一个 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeIOFailure    = "IO_FAILURE"    // 持久化读写失败
	ErrorCodeMalformed    = "MALFORMED"     // 数据结构无效
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleCatalog = "catalog" // 菜谱目录
	ModuleProfile = "profile" // 用户画像
	ModuleConfig  = "config"  // 配置
)

var (
	// ErrRecipeNotFound 表示反馈引用的菜谱 ID 不在目录中
	ErrRecipeNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: recipe not found")

	// ErrStoreIO 表示持久化层无法读写用户画像
	ErrStoreIO = NewDomainError(ModuleStore, ErrorCodeIOFailure, "store: io failure")

	// ErrMalformedProfile 表示已存储的用户画像无法还原为预期结构
	ErrMalformedProfile = NewDomainError(ModuleProfile, ErrorCodeMalformed, "profile: malformed data")

	// ErrInvalidInput 表示调用参数无效
	ErrInvalidInput = NewDomainError(ModuleProfile, ErrorCodeInvalidInput, "invalid input")
)

// IsRecipeNotFound 检查错误是否为 RecipeNotFound
func IsRecipeNotFound(err error) bool {
	return errors.Is(err, ErrRecipeNotFound)
}

// IsStoreIO 检查错误是否为 StoreIOFailure
func IsStoreIO(err error) bool {
	return errors.Is(err, ErrStoreIO)
}

// IsMalformedProfile 检查错误是否为 MalformedProfileData
func IsMalformedProfile(err error) bool {
	return errors.Is(err, ErrMalformedProfile)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT（不区分模块）
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
