// Package auth issues admin session tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"agencyhub/pkg/config"
	"agencyhub/pkg/util"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	admin     config.AdminConfig
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewService(admin config.AdminConfig, jwt config.JWTConfig, logger *zap.Logger) *Service {
	return &Service{
		admin:     admin,
		jwtSecret: jwt.Secret,
		tokenTTL:  jwt.TTL(),
		logger:    logger,
	}
}

// Login checks the admin credentials and returns a signed JWT.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.admin.Username || !util.CheckPassword(password, s.admin.PasswordHash) {
		s.logger.Warn("Admin login rejected", zap.String("username", username))
		return "", ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(username, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", err
	}
	s.logger.Info("Admin logged in", zap.String("username", username))
	return token, nil
}

// Verify returns the subject of a valid token.
func (s *Service) Verify(token string) (string, error) {
	return util.ParseJWT(token, s.jwtSecret)
}
