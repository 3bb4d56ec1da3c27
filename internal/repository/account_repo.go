package repository

import (
	"admin-go/internal/model"

	"gorm.io/gorm"
)

// AccountRepository 仪表盘账号数据访问层
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create 创建账号
func (r *AccountRepository) Create(account *model.Account) error {
	return r.db.Create(account).Error
}

// GetByID 按 ID 查询账号
func (r *AccountRepository) GetByID(id int64) (*model.Account, error) {
	var account model.Account
	if err := r.db.First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByEmail 按邮箱查询账号
func (r *AccountRepository) GetByEmail(email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// ExistsByEmail 判断邮箱是否已注册
func (r *AccountRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
