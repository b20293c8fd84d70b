package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/example/careslot/internal/infrastructure/crypto"
)

type TokenRepository interface {
	Get(ctx context.Context, account string) (string, error)
	Put(ctx context.Context, account, ciphertext string) error
}

// CalendarTokenService stores the calendar OAuth token encrypted in the
// database. It satisfies gcal.TokenStore.
type CalendarTokenService struct {
	Tokens  TokenRepository
	AEAD    *crypto.AEAD
	Account string
}

func (s CalendarTokenService) Load(ctx context.Context) (*oauth2.Token, error) {
	ct, err := s.Tokens.Get(ctx, s.Account)
	if err != nil {
		return nil, err
	}
	plain, err := s.AEAD.DecryptString(ct)
	if err != nil {
		return nil, fmt.Errorf("decrypt calendar token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(plain), &tok); err != nil {
		return nil, fmt.Errorf("decode calendar token: %w", err)
	}
	return &tok, nil
}

func (s CalendarTokenService) Save(ctx context.Context, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	ct, err := s.AEAD.EncryptToString(string(b))
	if err != nil {
		return err
	}
	return s.Tokens.Put(ctx, s.Account, ct)
}
