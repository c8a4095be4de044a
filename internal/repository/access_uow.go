package repository

import (
	"context"

	"gorm.io/gorm"
)

// AccessUnitOfWork 访问申请工作单元（事务）
// 申请状态变更与授权写入必须在同一事务内
type AccessUnitOfWork struct {
	db          *gorm.DB
	Requests    AccessRequestRepository
	Users       UserRepository
	Grants      GrantRepository
	PriceGroups PriceGroupRepository
	Branches    BranchRepository
}

// NewAccessUnitOfWork 创建工作单元
func NewAccessUnitOfWork(db *gorm.DB) *AccessUnitOfWork {
	return newAccessUnitOfWork(db)
}

func newAccessUnitOfWork(db *gorm.DB) *AccessUnitOfWork {
	return &AccessUnitOfWork{
		db:          db,
		Requests:    NewAccessRequestRepository(db),
		Users:       NewUserRepository(db),
		Grants:      NewGrantRepository(db),
		PriceGroups: NewPriceGroupRepository(db),
		Branches:    NewBranchRepository(db),
	}
}

// Transaction 执行事务，fn 返回错误则整体回滚
func (u *AccessUnitOfWork) Transaction(ctx context.Context, fn func(uow *AccessUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newAccessUnitOfWork(tx))
	})
}
