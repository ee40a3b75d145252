// Package saga 实现跨资源的补偿式事务
//
// 核心思想：
// 1. 把一个跨资源的操作拆成多个本地步骤
// 2. 每个步骤有对应的补偿操作
// 3. 某步失败时，按逆序执行已完成步骤的补偿
//
// 会员注册用它协调"文件存储"和"数据库写入"：
// 头像已落盘但会员写入失败时，补偿步骤删除头像文件
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xiebiao/playchat/pkg/metrics"
)

// Step 表示Saga中的一个步骤
// Action和Compensate都必须支持重复执行
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次Saga事务（不可复用，每次执行都新建）
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// NewSaga 创建一个新的Saga事务
//
// 示例：
//
//	s := saga.NewSaga("member.sign_up", 10*time.Second)
//	s.AddStep("存储头像", storeImage, deleteImage)
//	s.AddStep("写入会员", createMember, nil)
//	err := s.Execute(ctx)
func NewSaga(name string, timeout time.Duration) *Saga {
	return &Saga{
		name:    name,
		steps:   make([]Step, 0, 4),
		timeout: timeout,
	}
}

// AddStep 添加一个步骤，按添加顺序执行，按逆序补偿
// Action和Compensate都可以为nil
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
	return s
}

// Execute 执行Saga事务
// 返回的错误包装了失败步骤的原始错误，可用errors.Is/As判断
func (s *Saga) Execute(ctx context.Context) (err error) {
	defer func() { metrics.RecordSaga(s.name, err) }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.compensate(ctx)
			return fmt.Errorf("saga[%s]超时: %w", s.name, ctxErr)
		}

		if step.Action != nil {
			if actionErr := step.Action(ctx); actionErr != nil {
				s.compensate(ctx)
				return &StepError{Saga: s.name, Index: i, Step: step.Name, Err: actionErr}
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序补偿
// 补偿使用脱离取消信号的Context，原请求超时不影响补偿执行
// 某个补偿失败时继续执行剩余补偿
func (s *Saga) compensate(ctx context.Context) {
	if len(s.executed) == 0 {
		return
	}
	metrics.RecordSagaCompensation(s.name)

	compCtx := context.WithoutCancel(ctx)
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(compCtx); err != nil {
			slog.ErrorContext(ctx, "saga补偿失败", "saga", s.name, "step", step.Name, "err", err)
		}
	}

	s.executed = nil
}

// StepError 某个步骤执行失败
type StepError struct {
	Saga  string
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("saga[%s]步骤[%d:%s]执行失败: %v", e.Saga, e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Cause 取出步骤的原始错误（不是StepError时原样返回）
func Cause(err error) error {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Err
	}
	return err
}
