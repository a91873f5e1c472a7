package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9]{3,20}$`)

// ValidCredential reports whether v is usable as a username or password:
// lowercase alphanumeric, 3-20 chars.
func ValidCredential(v string) bool {
	return usernameRe.MatchString(v)
}

func CurrencyForCountry(country string) string {
	if country == "CO" {
		return "COP"
	}
	return "USD"
}

// WelcomeBonusForCountry is the signup credit, in the account's currency.
func WelcomeBonusForCountry(country string) int64 {
	if country == "CO" {
		return 2000
	}
	return 2
}

func NowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func NewID() string {
	return uuid.New().String()
}

func NewAccount(username, password, country string) *Account {
	currency := CurrencyForCountry(country)
	bonus := WelcomeBonusForCountry(country)
	return &Account{
		ID:        NewID(),
		Username:  username,
		Password:  password,
		Role:      RoleUser,
		Country:   country,
		Currency:  currency,
		CreatedAt: NowISO(),
		Balance:   bonus,
		LastCreditNotice: &CreditNotice{
			Amount:   bonus,
			Currency: currency,
			At:       NowISO(),
			Seen:     false,
			Note:     "Bono de bienvenida",
		},
	}
}

// ValidPick reports whether p is a zero-padded ball "01".."99".
func ValidPick(p string) bool {
	if len(p) != 2 {
		return false
	}
	n := 0
	for i := 0; i < 2; i++ {
		if p[i] < '0' || p[i] > '9' {
			return false
		}
		n = n*10 + int(p[i]-'0')
	}
	return n >= 1 && n <= 99
}

func FormatBall(n int) string {
	return fmt.Sprintf("%02d", n)
}
