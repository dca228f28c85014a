package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrInvalidMove)
	suite.NotNil(err)
	suite.Equal(ErrInvalidMove, err.Code)
	suite.Equal("无效的操作", err.Message)
	suite.Empty(err.Details)

	err = New(ErrNotFound, "会话不存在")
	suite.Equal("资源未找到", err.Message)
	suite.Equal("会话不存在", err.Details)

	err = New(ErrGameFull, "座位已满", "上限: 6")
	suite.Equal("座位已满; 上限: 6", err.Details)
}

func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInvalidMove, "第 %d 列已满", 3)
	suite.Equal(ErrInvalidMove, err.Code)
	suite.Equal("第 3 列已满", err.Details)
}

func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("磁盘已满")
	wrappedErr := Wrap(originalErr, ErrArtifactPersist)
	suite.Equal(ErrArtifactPersist, wrappedErr.Code)
	suite.Equal("磁盘已满", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	suite.Nil(Wrap(nil, ErrUnknown))

	// 包装已有的AppError时保留原始错误码
	appErr := New(ErrNotFound, "会话不存在")
	wrappedAppErr := Wrap(appErr, ErrInvalidParam, "额外信息")
	suite.Equal(ErrNotFound, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

func (suite *ErrorsTestSuite) TestWrapf() {
	originalErr := errors.New("连接超时")
	wrappedErr := Wrapf(originalErr, ErrDatabaseConnect, "数据库 %s 连接失败", "sqlite")
	suite.Equal("数据库 sqlite 连接失败", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)
}

func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrNotYourTurn)
	suite.True(Is(err, ErrNotYourTurn))
	suite.False(Is(err, ErrNotFound))
	suite.False(Is(nil, ErrNotYourTurn))
	suite.False(Is(errors.New("标准错误"), ErrUnknown))

	// 经过 fmt.Errorf 包装仍然可以识别
	wrapped := fmt.Errorf("apply move: %w", err)
	suite.True(Is(wrapped, ErrNotYourTurn))
}

func (suite *ErrorsTestSuite) TestGetCode() {
	suite.Equal(ErrOnCooldown, GetCode(New(ErrOnCooldown)))
	suite.Equal(ErrUnknown, GetCode(errors.New("标准错误")))
	suite.Equal(ErrorCode(0), GetCode(nil))
}

func (suite *ErrorsTestSuite) TestError() {
	err := &AppError{Code: ErrNotFound, Message: "资源未找到"}
	suite.Equal("[1002] 资源未找到", err.Error())

	err.Details = "key: guild:1"
	suite.Equal("[1002] 资源未找到: key: guild:1", err.Error())
}

func (suite *ErrorsTestSuite) TestUnwrap() {
	originalErr := errors.New("原始错误")
	suite.Equal(originalErr, Wrap(originalErr, ErrUnknown).Unwrap())
	suite.Nil(New(ErrUnknown).Unwrap())
}

func (suite *ErrorsTestSuite) TestWithCause() {
	cause := errors.New("写入失败")
	err := New(ErrArtifactPersist).WithCause(cause)
	suite.Equal(cause, err.Cause)
	suite.Equal("写入失败", err.Details)

	err2 := New(ErrArtifactPersist, "保存失败").WithCause(cause)
	suite.Equal("保存失败", err2.Details)
}

func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrInvalidParam, 400},
		{ErrInvalidMove, 400},
		{ErrNotFound, 404},
		{ErrNotYourTurn, 403},
		{ErrTimeout, 408},
		{ErrAlreadyActive, 409},
		{ErrGameFull, 409},
		{ErrGameOver, 409},
		{ErrOnCooldown, 429},
		{ErrTooManySessions, 429},
		{ErrNotImplemented, 501},
		{ErrDatabaseConnect, 503},
		{ErrArtifactPersist, 500},
		{ErrUnknown, 500},
	}

	for _, tc := range testCases {
		err := New(tc.code)
		suite.Equal(tc.expected, err.HTTPStatus(), "错误码 %d 应该返回HTTP状态码 %d", tc.code, tc.expected)
	}
}

func (suite *ErrorsTestSuite) TestIsRetryable() {
	for _, code := range []ErrorCode{ErrTimeout, ErrOnCooldown, ErrArtifactPersist, ErrDatabaseConnect, ErrDatabaseInsert} {
		suite.True(IsRetryable(New(code)), "错误码 %d 应该是可重试的", code)
	}
	for _, code := range []ErrorCode{ErrInvalidMove, ErrNotFound, ErrNotYourTurn} {
		suite.False(IsRetryable(New(code)), "错误码 %d 不应该是可重试的", code)
	}
	suite.False(IsRetryable(nil))
}

func (suite *ErrorsTestSuite) TestIsCritical() {
	for _, code := range []ErrorCode{ErrDatabaseConnect, ErrArtifactCorrupt, ErrConfigLoad} {
		suite.True(IsCritical(New(code)))
	}
	suite.False(IsCritical(New(ErrInvalidMove)))
	suite.False(IsCritical(nil))
}

func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.NotEmpty(err.Stack)
	suite.NotEmpty(err.GetStack())
}

func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrNotFound, "会话不存在")
	response := NewErrorResponse(err, "req-123")

	suite.False(response.Success)
	suite.Equal(err, response.Error)
	suite.Equal("req-123", response.RequestID)
	suite.Greater(response.Timestamp, int64(0))
}

func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	err := New(ErrorCode(99999))
	suite.Equal(ErrorCode(99999), err.Code)
	suite.Equal("未知错误", err.Message)
}

func (suite *ErrorsTestSuite) TestGameErrorMessages() {
	gameErrors := map[ErrorCode]string{
		ErrAlreadyActive:  "该频道已有进行中的游戏",
		ErrNotYourTurn:    "还没轮到你",
		ErrGameFull:       "游戏人数已满",
		ErrAlreadyStarted: "游戏已经开始",
		ErrGameOver:       "游戏已结束",
		ErrOnCooldown:     "操作冷却中",
	}

	for code, expectedMsg := range gameErrors {
		suite.Equal(expectedMsg, New(code).Message)
	}
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
