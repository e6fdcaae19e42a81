package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde
// env y opcionalmente archivo). Se construye una sola vez al arrancar y es de
// solo lectura después.
type Config struct {
	App    AppConfig
	DB     DBConfig
	HTTP   HTTPConfig
	Velneo VelneoConfig
	Sync   SyncConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
	LogFile  string // opcional: archivo adicional de log
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	userInfo := url.UserPassword(c.User, c.Password)

	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}

	return u.String()
}

// HTTPConfig configuración del servidor HTTP de estado.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// VelneoConfig configuración del cliente contra el servidor Velneo.
// APIKey es una clave precompartida opaca que viaja como query param.
type VelneoConfig struct {
	BaseURL        string // endpoint POST de alta (vta_fac_g)
	GetURL         string // endpoint GET de consulta de pendientes
	APIKey         string
	ClaveSucursal  string // clave de la sucursal/tienda para resolver la serie
	Serie          int    // serie general de la sucursal
	TimeoutSeconds int    // timeout de red por llamada
}

// Timeout devuelve el timeout de red como duración.
func (c VelneoConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SyncConfig configuración del ciclo de sincronización.
type SyncConfig struct {
	WaitSeconds     int    // pausa fija entre la fase de envío y la de consulta
	PendingLimit    int    // máximo de pendientes a consultar por ciclo
	IntervalMinutes int    // periodo entre ciclos en modo daemon
	TipoDoc         string // tipo de documento a sincronizar (ej. DV)
	RunOnce         bool   // ejecutar un ciclo y terminar (modo cron)
	SourceDir       string // directorio de documentos mapeados de entrada
}

// WaitInterval devuelve la pausa entre fases como duración.
func (c SyncConfig) WaitInterval() time.Duration {
	return time.Duration(c.WaitSeconds) * time.Second
}

// Interval devuelve el periodo entre ciclos como duración.
func (c SyncConfig) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, VELNEO_API_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "ventas-sync"),
			LogLevel: getString(v, "APP_LOG_LEVEL", "info"),
			LogFile:  getString(v, "APP_LOG_FILE", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "ventas_sync"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Velneo: VelneoConfig{
			BaseURL:        getString(v, "VELNEO_BASE_URL", ""),
			GetURL:         getString(v, "VELNEO_GET_URL", ""),
			APIKey:         getString(v, "VELNEO_API_KEY", ""),
			ClaveSucursal:  getString(v, "VELNEO_CLAVE_SUCURSAL", ""),
			Serie:          getInt(v, "VELNEO_SERIE", 1),
			TimeoutSeconds: getInt(v, "VELNEO_TIMEOUT_SECONDS", 60),
		},
		Sync: SyncConfig{
			WaitSeconds:     getInt(v, "SYNC_WAIT_SECONDS", 2),
			PendingLimit:    getInt(v, "SYNC_PENDING_LIMIT", 100),
			IntervalMinutes: getInt(v, "SYNC_INTERVAL_MINUTES", 15),
			TipoDoc:         getString(v, "SYNC_TIPO_DOC", "DV"),
			RunOnce:         getString(v, "SYNC_RUN_ONCE", "false") == "true",
			SourceDir:       getString(v, "SYNC_SOURCE_DIR", "./documentos"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
