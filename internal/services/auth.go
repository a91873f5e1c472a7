package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

type AuthService struct {
	store store.Store
	jwt   *JWTService
	log   *logrus.Entry
}

func NewAuthService(st store.Store, jwtService *JWTService) *AuthService {
	return &AuthService{
		store: st,
		jwt:   jwtService,
		log:   logrus.WithField("component", "auth"),
	}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error) {
	if !models.ValidCredential(req.Username) || !models.ValidCredential(req.Password) {
		return nil, fmt.Errorf("username and password must be lowercase letters and digits, 3-20 chars")
	}

	var created *models.Account
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		if !doc.AllowRegister {
			return "", ErrRegistrationClosed
		}
		if doc.FindByUsername(req.Username) != nil {
			return "", ErrUsernameTaken
		}
		created = models.NewAccount(req.Username, req.Password, req.Country)
		doc.Users = append(doc.Users, created)
		return fmt.Sprintf("Register %s country=%s", created.Username, created.Country), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"username": created.Username,
		"country":  created.Country,
	}).Info("account registered")
	return created, nil
}

// Login matches username and password against the shared document and
// issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.Account, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return "", nil, err
	}

	account := snap.Doc.FindByUsername(username)
	if account == nil || account.Password != password {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(account)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, account, nil
}

// Profile returns the current document state of one account.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.Account, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	account := snap.Doc.FindUser(userID)
	if account == nil {
		return nil, ErrUserNotFound
	}
	return account, nil
}

// MarkNoticeSeen clears the player's pending credit banner.
func (s *AuthService) MarkNoticeSeen(ctx context.Context, userID string) error {
	return store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if account.LastCreditNotice != nil {
			account.LastCreditNotice.Seen = true
		}
		return fmt.Sprintf("Notice seen %s", account.Username), nil
	})
}
