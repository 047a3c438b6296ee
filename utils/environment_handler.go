package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ENV                      = "ENV"
	PORT                     = "PORT"
	MONGODB_URI              = "MONGODB_URI"
	REDIS_URI                = "REDIS_URI"
	MYSQL_URI                = "MYSQL_URI"
	STATS_CONSISTENCY        = "STATS_CONSISTENCY"
	STATS_RECONCILE_SCHEDULE = "STATS_RECONCILE_SCHEDULE"
	CORS_ALLOWED_ORIGINS     = "CORS_ALLOWED_ORIGINS"

	ENV_DEVELOPMENT = "development"
	ENV_HOMOLOG     = "homolog"
	ENV_RELEASE     = "production"
)

var requiredKeys = []string{ENV, PORT, MONGODB_URI}

var allowedKeys = []string{ENV, PORT, MONGODB_URI, REDIS_URI, MYSQL_URI, STATS_CONSISTENCY, STATS_RECONCILE_SCHEDULE, CORS_ALLOWED_ORIGINS}

var allowedEnvValues = []string{ENV_DEVELOPMENT, ENV_HOMOLOG, ENV_RELEASE}

func LoadEnvVariables() {
	workDir, err := os.Getwd()
	if err != nil {
		panic("[ENV] Erro ao obter o diretório de trabalho: " + err.Error())
	}

	if err := LoadEnvFile(filepath.Join(workDir, ".env")); err != nil {
		panic(err.Error())
	}
}

// LoadEnvFile validates and exports the variables of an .env file. Without a
// file the current process environment is validated instead.
func LoadEnvFile(filePath string) error {
	values, err := godotenv.Read(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		values = map[string]string{}
		for _, key := range allowedKeys {
			if value, ok := os.LookupEnv(key); ok {
				values[key] = value
			}
		}
	} else if err != nil {
		return fmt.Errorf("[ENV] Erro ao ler o arquivo .env: %w", err)
	}

	for key, value := range values {
		if !slices.Contains(allowedKeys, key) {
			return fmt.Errorf("[ENV] Chave '%s' não é permitida. Chaves permitidas: %s",
				key, strings.Join(allowedKeys, ", "))
		}

		if key == ENV && !slices.Contains(allowedEnvValues, value) {
			return fmt.Errorf("[ENV] Valor inválido para ENV: %s. Valores permitidos: %s",
				value, strings.Join(allowedEnvValues, ", "))
		}
	}

	missingKeys := []string{}
	for _, key := range requiredKeys {
		if values[key] == "" {
			missingKeys = append(missingKeys, key)
		}
	}

	if len(missingKeys) > 0 {
		return fmt.Errorf("[ENV] Variáveis de ambiente obrigatórias ausentes: %s",
			strings.Join(missingKeys, ", "))
	}

	for key, value := range values {
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("[ENV] Erro ao definir variável de ambiente %s: %w", key, err)
		}
	}

	return nil
}

func GetEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
