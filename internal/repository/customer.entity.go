package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/samber/lo"
)

type CustomerEntity struct {
	ID          int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `db:"name"          gorm:"column:name;not null"`
	Email       string    `db:"email"         gorm:"column:email;not null;uniqueIndex"`
	Phone       string    `db:"phone"         gorm:"column:phone"`
	Address     string    `db:"address"       gorm:"column:address"`
	DateOfBirth string    `db:"date_of_birth" gorm:"column:date_of_birth"`
	Role        string    `db:"role"          gorm:"column:role;not null;index"`
	CreatedAt   time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Address:     m.Address,
		DateOfBirth: m.DateOfBirth,
		Role:        string(m.Role),
		CreatedAt:   m.CreatedAt,
	}
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Phone:       e.Phone,
		Address:     e.Address,
		DateOfBirth: e.DateOfBirth,
		Role:        model.Role(e.Role),
		CreatedAt:   e.CreatedAt,
	}
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	return lo.Map(entities, func(e *CustomerEntity, _ int) *model.Customer {
		return toCustomerModel(e)
	})
}
