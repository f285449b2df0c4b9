package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de las dos aplicaciones (lectura vía Viper
// desde variables de entorno y opcionalmente un archivo config.env).
type Config struct {
	App        AppConfig
	Gastos     DBConfig
	Inventario DBConfig
	BackupDir  string
}

// AppConfig configuración general.
type AppConfig struct {
	Env      string // development, production
	LogLevel string // trace, debug, info, warn, error
}

// DBConfig ubicación de la base de datos SQLite de una aplicación.
// Un solo archivo por aplicación; ":memory:" para bases efímeras.
type DBConfig struct {
	Path string
}

// Load lee la configuración desde variables de entorno y, si existe, desde
// config.env en el directorio actual. Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // el archivo es opcional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GASTOS_DB_PATH", "gastos.db")
	v.SetDefault("INVENTARIO_DB_PATH", "inventario.db")
	v.SetDefault("BACKUP_DIR", "backups")

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Gastos:     DBConfig{Path: v.GetString("GASTOS_DB_PATH")},
		Inventario: DBConfig{Path: v.GetString("INVENTARIO_DB_PATH")},
		BackupDir:  v.GetString("BACKUP_DIR"),
	}

	return cfg, nil
}
