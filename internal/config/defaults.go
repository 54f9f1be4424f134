package config

import "time"

const (
	DefaultKDFIterations   = 210_000
	DefaultCacheTTL        = 30 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultHTTPAddress     = "localhost:8080"
	DefaultTokenIssuer     = "pseudo-ledger"
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			KDFIterations: DefaultKDFIterations,
			TokenIssuer:   DefaultTokenIssuer,
		},
		Storage: Storage{
			DB: DB{
				Driver: DriverPostgres,
			},
			Cache: Cache{
				TTL: DefaultCacheTTL,
			},
		},
		Server: Server{
			HTTPAddress:     DefaultHTTPAddress,
			RequestTimeout:  DefaultRequestTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}
