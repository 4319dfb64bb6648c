package repoerr

import "errors"

// Kind 仓储错误分类
type Kind string

const (
	KindIntegrity  Kind = "INTEGRITY"  // 约束冲突（唯一键、外键、数据格式）
	KindConnection Kind = "CONNECTION" // 连接/网络类瞬时错误
	KindUnexpected Kind = "UNEXPECTED" // 其他未预期错误
)

// RepositoryError 带分类的仓储错误，保留原始错误用于诊断。
// 注意：记录不存在不是错误，仓储的读路径用 (nil, nil) 表达
type RepositoryError struct {
	Kind Kind
	msg  string
	err  error
}

func (e *RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e *RepositoryError) Unwrap() error {
	return e.err
}

// New 创建带分类的仓储错误
func New(kind Kind, msg string, cause error) *RepositoryError {
	return &RepositoryError{Kind: kind, msg: msg, err: cause}
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	var e *RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Is 判断错误是否为仓储错误
func Is(err error) bool {
	var e *RepositoryError
	return errors.As(err, &e)
}
