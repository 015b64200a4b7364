package service

import (
	"context"
	"errors"
	"fmt"

	"TPISync/internal/interfaces"
)

// ErrMissingKey 候选实体既没有稳定 id 也没有自然键，无法定位规范记录
var ErrMissingKey = errors.New("candidate has no identity key")

// Mergeable 可参与调和的实体：*T 能判断自身是否带键，并能把新观测合并进来
type Mergeable[T any] interface {
	*T
	HasKey() bool
	MergeFrom(src *T)
}

// Reconciler 读-合并-写：同一个算法按实体类型实例化。
// 不加锁，同键并发写的原子性由存储层保证；合并规则单调（非空覆盖），后写者胜可以接受
type Reconciler[T any, P Mergeable[T]] struct {
	repo interfaces.Repository[T]
}

func NewReconciler[T any, P Mergeable[T]](repo interfaces.Repository[T]) *Reconciler[T, P] {
	return &Reconciler[T, P]{repo: repo}
}

// Reconcile 不存在则保存候选，存在则逐字段合并后保存，返回规范记录
func (r *Reconciler[T, P]) Reconcile(ctx context.Context, candidate *T) (*T, error) {
	if candidate == nil || !P(candidate).HasKey() {
		return nil, ErrMissingKey
	}
	existing, err := r.repo.FindByKey(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("查找规范记录失败: %w", err)
	}
	if existing == nil {
		saved, err := r.repo.Save(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("保存新记录失败: %w", err)
		}
		return saved, nil
	}
	P(existing).MergeFrom(candidate)
	saved, err := r.repo.Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("保存合并结果失败: %w", err)
	}
	return saved, nil
}

// FindOrCreate 已存在则原样返回，不写库；否则保存候选
func (r *Reconciler[T, P]) FindOrCreate(ctx context.Context, candidate *T) (*T, error) {
	if candidate == nil || !P(candidate).HasKey() {
		return nil, ErrMissingKey
	}
	existing, err := r.repo.FindByKey(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("查找规范记录失败: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	saved, err := r.repo.Save(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("保存新记录失败: %w", err)
	}
	return saved, nil
}
