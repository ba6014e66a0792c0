package repository

import (
	"context"

	"taxdocpipeline/internal/models"
	"taxdocpipeline/pkg/database"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(user *models.User) error {
	return database.GetDB().Create(user).Error
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	return r.FindByUsernameCtx(context.Background(), username)
}

func (r *UserRepository) FindByUsernameCtx(ctx context.Context, username string) (*models.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var user models.User
	err := database.GetDB().WithContext(ctx).Where("username = ? AND is_active = 1", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	return r.FindByIDCtx(context.Background(), id)
}

func (r *UserRepository) FindByIDCtx(ctx context.Context, id string) (*models.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var user models.User
	err := database.GetDB().WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindAll() ([]models.User, error) {
	return r.FindAllCtx(context.Background())
}

func (r *UserRepository) FindAllCtx(ctx context.Context) ([]models.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var users []models.User
	err := database.GetDB().WithContext(ctx).Find(&users).Error
	return users, err
}

func (r *UserRepository) FindUsernamesByIDsCtx(ctx context.Context, ids []string) ([]models.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := database.GetDB().WithContext(ctx).
		Select("id", "username", "role", "is_active").
		Where("id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) ExistsByIDCtx(ctx context.Context, id string) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var count int64
	err := database.GetDB().WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) CountActiveAdminsCtx(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var count int64
	err := database.GetDB().WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active = 1", "admin").
		Count(&count).Error
	return count, err
}

func (r *UserRepository) UpdateActiveByIDCtx(ctx context.Context, id string, active bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	val := 0
	if active {
		val = 1
	}
	return database.GetDB().WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", val).Error
}

func (r *UserRepository) DeleteByIDCtx(ctx context.Context, id string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return database.GetDB().WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (r *UserRepository) Update(user *models.User) error {
	return database.GetDB().Save(user).Error
}

func (r *UserRepository) UpdatePassword(id, hashedPassword string) error {
	return r.UpdatePasswordCtx(context.Background(), id, hashedPassword)
}

func (r *UserRepository) UpdatePasswordCtx(ctx context.Context, id, hashedPassword string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return database.GetDB().WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hashedPassword).Error
}

func (r *UserRepository) UpdateRole(username, role string) error {
	return database.GetDB().Model(&models.User{}).Where("username = ?", username).Update("role", role).Error
}

func (r *UserRepository) Count() (int64, error) {
	return r.CountCtx(context.Background())
}

func (r *UserRepository) CountCtx(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var count int64
	err := database.GetDB().WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	return r.ExistsByUsernameCtx(context.Background(), username)
}

func (r *UserRepository) ExistsByUsernameCtx(ctx context.Context, username string) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var count int64
	err := database.GetDB().WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
