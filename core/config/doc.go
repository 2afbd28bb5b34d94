// Package config loads environment-driven settings into tagged structs.
//
// A .env file in the working directory is read once, on the first call, and
// never overrides variables already present in the environment. Fields are
// parsed with caarlos0/env, so the usual `env` and `envDefault` tags apply
// and nested structs are filled from their own tags:
//
//	type AppConfig struct {
//		APIURL string `env:"BACKOFFICE_API_URL" envDefault:"http://localhost:8080"`
//		Redis  redis.Config
//	}
//
//	var cfg AppConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// The result is cached per type: later calls for the same type copy the
// cached value and do not look at the environment again. Tests that change
// variables between cases call Reset first.
package config
