package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/example/careslot/internal/internaltypes"
)

// TokenStore persists the calendar OAuth token. Load returns
// internaltypes.ErrNotFound when nothing has been stored yet.
type TokenStore interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, tok *oauth2.Token) error
}

// FileTokenStore keeps the token as JSON in a file readable only by the owner.
type FileTokenStore struct{ Path string }

func (s FileTokenStore) Load(context.Context) (*oauth2.Token, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, internaltypes.ErrNotFound
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return &tok, nil
}

func (s FileTokenStore) Save(_ context.Context, tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".token-*")
	if err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// persistingTokenSource saves every token whose access token differs from the
// last one saved, so refreshed tokens survive restarts.
type persistingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	store  TokenStore
	last   string
	logger zerolog.Logger
}

func newPersistingTokenSource(base oauth2.TokenSource, store TokenStore, initial *oauth2.Token, logger zerolog.Logger) *persistingTokenSource {
	p := &persistingTokenSource{base: base, store: store, logger: logger}
	if initial != nil {
		p.last = initial.AccessToken
	}
	return p
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != p.last {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.store.Save(ctx, tok); err != nil {
			p.logger.Warn().Err(err).Msg("failed to persist refreshed calendar token")
		} else {
			p.last = tok.AccessToken
			p.logger.Debug().Time("expiry", tok.Expiry).Msg("calendar token refreshed")
		}
	}
	return tok, nil
}
