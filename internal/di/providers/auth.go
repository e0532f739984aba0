package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/pagebound/bookstore-server/internal/auth"
	"github.com/pagebound/bookstore-server/internal/config"
	"github.com/pagebound/bookstore-server/internal/logger"
)

// AuthKey is the symmetric PASETO key used to sign access tokens.
type AuthKey []byte

// ProvideAuthKey provides the token key. A configured hex key wins;
// otherwise the key is loaded from (or generated into) the data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.TokenKeyHex != "" {
		key, err := auth.DecodeKey(cfg.Auth.TokenKeyHex)
		if err != nil {
			return nil, fmt.Errorf("configured token key: %w", err)
		}
		log.Debug("Using configured token key")
		return AuthKey(key), nil
	}

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("load token key: %w", err)
	}
	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
}
