package config

import "time"

// Backend points at the serverless functions and object storage the app talks
// to for everything that is not the deals database.
type Backend struct {
	FunctionsBaseURL     string        `env:"FUNCTIONS_BASE_URL,notEmpty"`
	StoragePublicBaseURL string        `env:"STORAGE_PUBLIC_BASE_URL,notEmpty"`
	ServiceToken         string        `env:"BACKEND_SERVICE_TOKEN" json:"-"`
	RequestTimeout       time.Duration `env:"BACKEND_REQUEST_TIMEOUT" envDefault:"15s"`
}
