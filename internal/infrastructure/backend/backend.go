package backend

import (
	"fmt"

	"github.com/popcornsocial/popcorn/internal/domain/contract"
	"github.com/popcornsocial/popcorn/internal/infrastructure/backend/jsonserver"
	"github.com/popcornsocial/popcorn/internal/infrastructure/backend/supabase"
	"github.com/popcornsocial/popcorn/internal/infrastructure/config"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

// New returns the provider selected by cfg.
func New(cfg usecasecontract.IConfigProvider, logger usecasecontract.IAppLogger) (contract.IBackend, error) {
	switch cfg.GetBackend() {
	case config.BackendSupabase:
		if cfg.GetSupabaseURL() == "" || cfg.GetSupabaseAnonKey() == "" {
			return nil, fmt.Errorf("supabase backend needs SUPABASE_URL and SUPABASE_ANON_KEY")
		}
		logger.Debugf("using supabase backend at %s", cfg.GetSupabaseURL())
		return supabase.New(cfg.GetSupabaseURL(), cfg.GetSupabaseAnonKey(), cfg.GetHTTPTimeout(), logger), nil
	case config.BackendJSONServer:
		logger.Debugf("using json-server backend at %s", cfg.GetJSONServerURL())
		return jsonserver.New(cfg.GetJSONServerURL(), cfg.GetHTTPTimeout(), logger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.GetBackend())
	}
}
