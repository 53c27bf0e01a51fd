package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App                App                `mapstructure:",squash"`
	Server             Server             `mapstructure:",squash"`
	Database           Database           `mapstructure:",squash"`
	Blob               Blob               `mapstructure:",squash"`
	Auth               Auth               `mapstructure:",squash"`
	ReconciliationSync ReconciliationSync `mapstructure:",squash"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

// Blob aponta para o serviço que armazena business_config.json e strategies.json
type Blob struct {
	BaseURL            string        `mapstructure:"blob_base_url"`
	AccessToken        string        `mapstructure:"blob_access_token"`
	BusinessConfigPath string        `mapstructure:"blob_business_config_path"`
	StrategiesPath     string        `mapstructure:"blob_strategies_path"`
	RequestTimeout     time.Duration `mapstructure:"blob_request_timeout"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	SecretKey string `mapstructure:"auth_secret_key"`
}

type ReconciliationSync struct {
	CronSchedule      string        `mapstructure:"reconciliation_sync_cron"`
	MaxConcurrentJobs int           `mapstructure:"reconciliation_sync_max_concurrent_jobs"`
	RetryLimit        int           `mapstructure:"reconciliation_sync_retry_limit"`
	RetryBackoff      time.Duration `mapstructure:"reconciliation_sync_retry_backoff"`
	StoreTimeout      time.Duration `mapstructure:"reconciliation_sync_store_timeout"`
	Enabled           bool          `mapstructure:"reconciliation_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/promosphere")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("BLOB_BASE_URL", "http://localhost:9000/promosphere")
	viper.SetDefault("BLOB_ACCESS_TOKEN", "your_access_token") // ONLY LOCAL
	viper.SetDefault("BLOB_BUSINESS_CONFIG_PATH", "business_config.json")
	viper.SetDefault("BLOB_STRATEGIES_PATH", "strategies.json")
	viper.SetDefault("BLOB_REQUEST_TIMEOUT", "10s")

	viper.SetDefault("AUTH_SECRET_KEY", "your_secret_key")

	// Defaults para o ciclo de reconciliação
	viper.SetDefault("RECONCILIATION_SYNC_CRON", "0 */12 * * *")      // A cada 12 horas
	viper.SetDefault("RECONCILIATION_SYNC_MAX_CONCURRENT_JOBS", 5)    // 5 entidades em paralelo
	viper.SetDefault("RECONCILIATION_SYNC_RETRY_LIMIT", 2)            // 2 novas tentativas por entidade
	viper.SetDefault("RECONCILIATION_SYNC_RETRY_BACKOFF", "500ms")    // Espera entre tentativas
	viper.SetDefault("RECONCILIATION_SYNC_STORE_TIMEOUT", "5s")       // Timeout por chamada ao banco
	viper.SetDefault("RECONCILIATION_SYNC_ENABLED", true)             // Habilitar ciclo agendado

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
