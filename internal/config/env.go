package config

import (
	"os"
	"strconv"

	"statforest/internal/store"
)

// APIConfig configures the inference server from the environment.
type APIConfig struct {
	ModelName string        `validate:"required"`
	Store     store.Options `validate:"required"`
	APIKey    string
	Port      int `validate:"min=1,max=65535"`
}

// FromEnv reads MODEL_NAME, STORE_KIND, STORE_DIR, MONGO_URI, MONGO_DB, MONGO_COLLECTION,
// API_KEY and PORT, falling back to the trainer defaults.
func FromEnv() (APIConfig, error) {
	def := Default()
	cfg := APIConfig{
		ModelName: getenv("MODEL_NAME", def.Model.Name),
		Store: store.Options{
			Kind:       getenv("STORE_KIND", def.Store.Kind),
			Dir:        getenv("STORE_DIR", def.Store.Dir),
			MongoURI:   os.Getenv("MONGO_URI"),
			Database:   getenv("MONGO_DB", "statforest"),
			Collection: getenv("MONGO_COLLECTION", "models"),
		},
		APIKey: os.Getenv("API_KEY"),
		Port:   8080,
	}
	if p := os.Getenv("PORT"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return APIConfig{}, err
		}
		cfg.Port = n
	}
	return cfg, structErrors(validate.Struct(cfg))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
