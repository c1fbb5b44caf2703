package repository

import (
	"time"

	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/samber/lo"
)

type ManagerEntity struct {
	ID        int64     `db:"manager_id" gorm:"primaryKey;autoIncrement;column:manager_id"`
	FirstName string    `db:"f_name"     gorm:"column:f_name;not null"`
	LastName  string    `db:"l_name"     gorm:"column:l_name;not null;default:''"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ManagerEntity) TableName() string {
	return "managers"
}

func toManagerModel(e *ManagerEntity) *model.Manager {
	if e == nil {
		return nil
	}
	return &model.Manager{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		CreatedAt: e.CreatedAt,
	}
}

func toManagerModels(entities []*ManagerEntity) []*model.Manager {
	return lo.Map(entities, func(e *ManagerEntity, _ int) *model.Manager {
		return toManagerModel(e)
	})
}
