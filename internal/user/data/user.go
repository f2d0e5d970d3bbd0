package data

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wallify/cdn-backend/internal/pkg/database"
	"github.com/wallify/cdn-backend/internal/user/biz"
)

// User is the gorm model backing accounts
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	APIKey       string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	IsAdmin      bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

// Migrate creates the users table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}

func toDomain(m *User) *biz.User {
	return &biz.User{
		ID:        m.ID,
		Username:  m.Username,
		APIKey:    m.APIKey,
		IsActive:  m.IsActive,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
	}
}

// UserRepo implements biz.UserRepo on gorm
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *database.DB) *UserRepo {
	return &UserRepo{db: db.DB}
}

func (r *UserRepo) Create(ctx context.Context, user *biz.User, passwordHash string) error {
	m := &User{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: passwordHash,
		APIKey:       user.APIKey,
		IsActive:     user.IsActive,
		IsAdmin:      user.IsAdmin,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*biz.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*biz.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, err
	}
	return toDomain(&m), nil
}

func (r *UserRepo) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var m User
	if err := r.db.WithContext(ctx).Select("password_hash").Where("id = ?", id).First(&m).Error; err != nil {
		return "", err
	}
	return m.PasswordHash, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*biz.User, error) {
	var models []*User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]*biz.User, 0, len(models))
	for _, m := range models {
		users = append(users, toDomain(m))
	}
	return users, nil
}

func (r *UserRepo) UpdateAPIKey(ctx context.Context, id, apiKey string) error {
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Update("api_key", apiKey).Error
}

func (r *UserRepo) UpdateFlags(ctx context.Context, id string, isActive, isAdmin *bool) error {
	updates := map[string]interface{}{}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	if isAdmin != nil {
		updates["is_admin"] = *isAdmin
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).
		Updates(updates).Error
}

func (r *UserRepo) IsNotFound(err error) bool {
	return database.IsRecordNotFoundError(err)
}
