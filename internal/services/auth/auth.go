package auth

import (
	"errors"

	"github.com/yashh-d/chainpulse/internal/util"
)

const ServiceName = "chainpulse"

var ErrTokenNotFound = errors.New("auth token not found")

// KnownServices lists the credential slots the CLI manages: the Supabase
// anon/service key, the Dune API key, and an optional CoinGecko pro key.
var KnownServices = []string{"supabase", "dune", "coingecko"}

type Store interface {
	SetToken(service string, token string) error
	GetToken(service string) (string, error)
	DeleteToken(service string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// NormalizeService normalizes a credential service name for consistent
// key lookup.
func NormalizeService(service string) string {
	return util.NormalizeKey(service)
}

// IsKnownService reports whether the name is a credential slot the CLI
// knows about.
func IsKnownService(service string) bool {
	normalized := NormalizeService(service)
	for _, s := range KnownServices {
		if s == normalized {
			return true
		}
	}
	return false
}
