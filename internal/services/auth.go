package services

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"taxdocpipeline/internal/config"
	"taxdocpipeline/internal/models"
	"taxdocpipeline/internal/repository"
	"taxdocpipeline/internal/utils"
)

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService() *AuthService {
	return &AuthService{
		userRepo: repository.NewUserRepository(),
	}
}

type AuthResult struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	User    *models.UserResponse `json:"user,omitempty"`
	Token   string               `json:"token,omitempty"`
}

// Register creates a new operator account with the default role.
func (s *AuthService) Register(username, password string, email *string) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return &AuthResult{Success: false, Message: "username already exists"}, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := utils.GenerateUUID()
	user := &models.User{
		ID:       id,
		Username: username,
		Password: string(hashedPassword),
		Email:    email,
		Role:     "operator",
		IsActive: 1,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(id, username, "operator")
	if err != nil {
		return nil, err
	}

	userResponse := user.ToResponse()
	return &AuthResult{
		Success: true,
		Message: "registration successful",
		User:    &userResponse,
		Token:   token,
	}, nil
}

// CreateInitialAdmin registers the first operator account and promotes
// it to the "admin" role, refusing if any account already exists.
func (s *AuthService) CreateInitialAdmin(username, password string, email *string) (*AuthResult, error) {
	hasUsers, err := s.HasUsers()
	if err != nil {
		return nil, err
	}
	if hasUsers {
		return &AuthResult{Success: false, Message: "setup has already completed"}, nil
	}

	result, err := s.Register(username, password, email)
	if err != nil || !result.Success {
		return result, err
	}

	if err := s.userRepo.UpdateRole(username, "admin"); err != nil {
		return nil, err
	}
	result.Message = "initial admin account created"
	return result, nil
}

// Login authenticates an operator and issues a JWT.
func (s *AuthService) Login(username, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return &AuthResult{Success: false, Message: "invalid username or password"}, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return &AuthResult{Success: false, Message: "invalid username or password"}, nil
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	userResponse := user.ToResponse()
	return &AuthResult{
		Success: true,
		Message: "login successful",
		User:    &userResponse,
		Token:   token,
	}, nil
}

// VerifyToken verifies a JWT token
func (s *AuthService) VerifyToken(tokenString string) (*utils.Claims, error) {
	return utils.VerifyToken(tokenString)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(id string) (*models.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	userResponse := user.ToResponse()
	return &userResponse, nil
}

// GetAllUsers gets all operator accounts
func (s *AuthService) GetAllUsers() ([]models.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	var responses []models.UserResponse
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}

// UpdatePassword updates an operator's password
func (s *AuthService) UpdatePassword(userID, oldPassword, newPassword string) (*AuthResult, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return &AuthResult{Success: false, Message: "user not found"}, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return &AuthResult{Success: false, Message: "current password is incorrect"}, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePassword(userID, string(hashedPassword)); err != nil {
		return nil, err
	}

	return &AuthResult{Success: true, Message: "password updated"}, nil
}

// HasUsers checks if any operator accounts exist
func (s *AuthService) HasUsers() (bool, error) {
	count, err := s.userRepo.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureAdminExists creates a default admin account if none exists,
// using ADMIN_PASSWORD from the environment or a generated one.
func (s *AuthService) EnsureAdminExists() error {
	hasUsers, err := s.HasUsers()
	if err != nil {
		return err
	}

	if !hasUsers {
		adminPassword := config.AppConfig.AdminPassword
		isRandomPassword := adminPassword == ""

		if isRandomPassword {
			adminPassword, err = utils.GenerateSecurePassword(12)
			if err != nil {
				return err
			}
		}

		log.Println("No operator accounts found, creating default admin account...")

		email := "admin@localhost"
		result, err := s.Register("admin", adminPassword, &email)
		if err != nil {
			return err
		}

		if result.Success {
			if err := s.userRepo.UpdateRole("admin", "admin"); err != nil {
				return err
			}

			log.Println("=========================================")
			log.Println("Default admin account created:")
			log.Println("  Username: admin")
			if isRandomPassword {
				log.Printf("  Password: %s\n", adminPassword)
				log.Println("IMPORTANT: save this password, it will not be shown again.")
			} else {
				log.Println("  Password: (from ADMIN_PASSWORD environment variable)")
			}
			log.Println("=========================================")
		}
	}

	return nil
}

var ErrUnauthorized = errors.New("unauthorized")
