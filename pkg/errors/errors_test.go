package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"参数错误", NewInput("参数错误"), IsInput},
		{"越权访问", NewAccessDenied("访问被拒绝"), IsAccessDenied},
		{"资源不存在", NewNotFound("资源不存在"), IsNotFound},
		{"自然键冲突", NewConflict("已存在同名资源"), IsConflict},
		{"基础设施错误", NewInfrastructure(stderrors.New("connection refused")), IsInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))

			// 包装后仍可识别
			wrapped := fmt.Errorf("外层: %w", tt.err)
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestHTTPCode(t *testing.T) {
	assert.Equal(t, CodeInvalidParam, HTTPCode(NewInput("x")))
	assert.Equal(t, CodeForbidden, HTTPCode(NewAccessDenied("x")))
	assert.Equal(t, CodeNotFound, HTTPCode(NewNotFound("x")))
	assert.Equal(t, CodeConflict, HTTPCode(NewConflict("x")))
	assert.Equal(t, CodeServerError, HTTPCode(NewInfrastructure(stderrors.New("x"))))
	assert.Equal(t, CodeServerError, HTTPCode(stderrors.New("未分类错误")))
}

func TestInfrastructureKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewInfrastructure(cause)

	assert.Equal(t, "服务器内部错误", err.Error())
	assert.ErrorIs(t, err, cause)
}
