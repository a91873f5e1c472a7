package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"balotera-backend/internal/models"
	"balotera-backend/internal/store"
)

// AdminService covers the back-office edits that race against player
// sessions on the shared document. Every edit is a conditional write, so a
// concurrent settlement pass or bet cannot be silently overwritten.
type AdminService struct {
	store store.Store
	log   *logrus.Entry
}

func NewAdminService(st store.Store) *AdminService {
	return &AdminService{
		store: st,
		log:   logrus.WithField("component", "admin"),
	}
}

// AdjustBalance credits (delta > 0) or debits (delta < 0) an account and
// leaves a credit notice for the player.
func (s *AdminService) AdjustBalance(ctx context.Context, userID string, delta int64) (*models.Account, error) {
	if delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}

	var updated *models.Account
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if delta < 0 && account.Balance < -delta {
			return "", fmt.Errorf("cannot deduct more than the balance")
		}

		account.Balance += delta
		note := "Ajuste admin (suma)"
		if delta < 0 {
			note = "Ajuste admin (resta)"
		}
		account.LastCreditNotice = &models.CreditNotice{
			Amount:   delta,
			Currency: account.Currency,
			At:       models.NowISO(),
			Seen:     false,
			Note:     note,
		}
		updated = account
		return fmt.Sprintf("Admin adjust balance %+d for %s", delta, account.Username), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"delta":   delta,
	}).Info("balance adjusted")
	return updated, nil
}

func (s *AdminService) SetPassword(ctx context.Context, userID, password string) error {
	if !models.ValidCredential(password) {
		return fmt.Errorf("password must be lowercase letters and digits, 3-20 chars")
	}
	return store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		account.Password = password
		return fmt.Sprintf("Admin changed password %s", account.Username), nil
	})
}

func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	return store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		account := doc.FindUser(userID)
		if account == nil {
			return "", ErrUserNotFound
		}
		if account.Role == models.RoleAdmin {
			return "", fmt.Errorf("cannot delete an admin account")
		}
		doc.RemoveUser(userID)
		return fmt.Sprintf("Admin deleted user %s", account.Username), nil
	})
}

// ToggleRegister flips whether new signups are accepted, returning the new
// setting.
func (s *AdminService) ToggleRegister(ctx context.Context) (bool, error) {
	var allow bool
	err := store.Update(ctx, s.store, func(doc *models.Document) (string, error) {
		doc.AllowRegister = !doc.AllowRegister
		allow = doc.AllowRegister
		return fmt.Sprintf("Toggle allowRegister=%t", allow), nil
	})
	return allow, err
}
