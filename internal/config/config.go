package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"notification-dispatch/internal/models"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Поддерживаемые транспорты.
const (
	PushGatewayFCM  = "fcm"
	PushGatewayAPNS = "apns"
	PushGatewayStub = "stub" // только логирует, для локальной разработки

	MailProviderSMTP     = "smtp"
	MailProviderPostmark = "postmark"
)

type Config struct {
	Env                string `yaml:"env" env:"ENV" env-default:"development"`
	LogLevel           string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	ServerPort         string `yaml:"server_port" env:"SERVER_PORT" env-default:"8080"`
	CORSAllowedOrigins string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	SecretsDir         string `yaml:"secrets_dir" env:"SECRETS_DIR" env-default:"/run/secrets"`

	Firebase FirebaseConfig `yaml:"firebase"`
	Push     PushConfig     `yaml:"push"`
	APNS     APNSConfig     `yaml:"apns"`
	Mail     MailConfig     `yaml:"mail"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Postmark PostmarkConfig `yaml:"postmark"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

// FirebaseConfig описывает сервис-аккаунт. Достаточно одного из трёх вариантов:
// JSON целиком, тройка project/client email/private key, или путь к файлу ключа.
type FirebaseConfig struct {
	ServiceAccountJSON string `yaml:"service_account_json" env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	ProjectID          string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	ClientEmail        string `yaml:"client_email" env:"FIREBASE_CLIENT_EMAIL"`
	PrivateKey         string `yaml:"private_key" env:"FIREBASE_PRIVATE_KEY"` // переводы строк экранированы как \n
	CredentialsPath    string `yaml:"credentials_path" env:"FCM_CREDENTIALS_PATH"`
}

type PushConfig struct {
	Gateway string `yaml:"gateway" env:"PUSH_GATEWAY" env-default:"fcm"`
}

type APNSConfig struct {
	KeyID      string `yaml:"key_id" env:"APNS_KEY_ID"`
	TeamID     string `yaml:"team_id" env:"APNS_TEAM_ID"`
	KeyPath    string `yaml:"key_path" env:"APNS_KEY_PATH"`
	Topic      string `yaml:"topic" env:"APNS_TOPIC"`
	Production bool   `yaml:"production" env:"APNS_PRODUCTION" env-default:"false"`
}

type MailConfig struct {
	Provider  string `yaml:"provider" env:"MAIL_PROVIDER" env-default:"smtp"`
	FromName  string `yaml:"from_name" env:"MAIL_FROM_NAME" env-default:"Hive SMTP"`
	FromEmail string `yaml:"from_email" env:"MAIL_FROM_EMAIL"` // по умолчанию SMTP_EMAIL
}

type SMTPConfig struct {
	Host     string        `yaml:"host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port     int           `yaml:"port" env:"SMTP_PORT" env-default:"465"`
	Email    string        `yaml:"email" env:"SMTP_EMAIL"`
	Password string        `yaml:"password" env:"SMTP_PASSWORD"`
	SSL      bool          `yaml:"ssl" env:"SMTP_SSL" env-default:"true"` // implicit TLS; false = STARTTLS
	Timeout  time.Duration `yaml:"timeout" env:"SMTP_TIMEOUT" env-default:"15s"`
}

type PostmarkConfig struct {
	ServerToken  string `yaml:"server_token" env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `yaml:"account_token" env:"POSTMARK_ACCOUNT_TOKEN"`
}

// RabbitMQConfig включает приём push-запросов из очереди. Пустой URI отключает его.
type RabbitMQConfig struct {
	URI                 string `yaml:"uri" env:"RABBITMQ_URI"`
	PushQueueName       string `yaml:"push_queue_name" env:"PUSH_QUEUE_NAME" env-default:"push_dispatch"`
	StaleTokenQueueName string `yaml:"stale_token_queue_name" env:"STALE_TOKEN_QUEUE_NAME" env-default:"push_stale_tokens"`
	WorkerConcurrency   int    `yaml:"worker_concurrency" env:"WORKER_CONCURRENCY" env-default:"4"`
}

// Enabled сообщает, настроен ли приём из очереди.
func (c RabbitMQConfig) Enabled() bool {
	return c.URI != ""
}

// PrivateKeyPEM возвращает ключ с восстановленными переводами строк.
func (c FirebaseConfig) PrivateKeyPEM() string {
	return strings.ReplaceAll(c.PrivateKey, `\n`, "\n")
}

// SenderEmail возвращает адрес отправителя писем.
func (c *Config) SenderEmail() string {
	if c.Mail.FromEmail != "" {
		return c.Mail.FromEmail
	}
	return c.SMTP.Email
}

// GetAllowedOrigins разбивает CORSAllowedOrigins. "*" или пустая строка означают любой origin (nil).
func (c *Config) GetAllowedOrigins() []string {
	raw := strings.ReplaceAll(c.CORSAllowedOrigins, " ", "")
	if raw == "" || raw == "*" {
		return nil
	}
	return strings.Split(raw, ",")
}

// LoadConfig читает .env (если есть), затем config.yml (путь из CONFIG_PATH),
// а при его отсутствии только переменные окружения. Секреты, не заданные в окружении,
// дочитываются из SecretsDir. Результат проходит Validate.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: could not load %s: %v", envFilePath, err)
			} else {
				log.Printf("Loaded environment from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: error checking %s: %v", envFilePath, err)
		}
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read config file '%s': %v; falling back to environment", configPath, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, &models.ConfigurationError{Reason: fmt.Sprintf("reading environment: %v", err)}
		}
	}

	cfg.loadSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadSecrets заполняет пустые секретные поля из файлов Docker secrets.
func (c *Config) loadSecrets() {
	fill := func(dst *string, name string) {
		if *dst != "" {
			return
		}
		if v, err := ReadSecret(c.SecretsDir, name); err == nil {
			*dst = v
		}
	}
	fill(&c.Firebase.ServiceAccountJSON, "firebase_service_account_json")
	fill(&c.Firebase.PrivateKey, "firebase_private_key")
	fill(&c.SMTP.Password, "smtp_password")
	fill(&c.Postmark.ServerToken, "postmark_server_token")
	fill(&c.Postmark.AccountToken, "postmark_account_token")
}

// Validate проверяет, что всё необходимое для обслуживания запросов задано.
func (c *Config) Validate() error {
	if err := c.validateFirebase(); err != nil {
		return err
	}

	switch c.Push.Gateway {
	case PushGatewayFCM, PushGatewayStub:
	case PushGatewayAPNS:
		required := []struct{ key, value string }{
			{"APNS_KEY_ID", c.APNS.KeyID},
			{"APNS_TEAM_ID", c.APNS.TeamID},
			{"APNS_KEY_PATH", c.APNS.KeyPath},
			{"APNS_TOPIC", c.APNS.Topic},
		}
		for _, r := range required {
			if r.value == "" {
				return &models.ConfigurationError{Key: r.key, Reason: "required when PUSH_GATEWAY=apns"}
			}
		}
	default:
		return &models.ConfigurationError{Key: "PUSH_GATEWAY", Reason: fmt.Sprintf("unsupported value %q", c.Push.Gateway)}
	}

	switch c.Mail.Provider {
	case MailProviderSMTP:
		if c.SMTP.Host == "" {
			return &models.ConfigurationError{Key: "SMTP_HOST", Reason: "is required"}
		}
		if c.SMTP.Port <= 0 {
			return &models.ConfigurationError{Key: "SMTP_PORT", Reason: "must be positive"}
		}
		if c.SMTP.Email == "" {
			return &models.ConfigurationError{Key: "SMTP_EMAIL", Reason: "is required"}
		}
		if c.SMTP.Password == "" {
			return &models.ConfigurationError{Key: "SMTP_PASSWORD", Reason: "is required"}
		}
	case MailProviderPostmark:
		if c.Postmark.ServerToken == "" {
			return &models.ConfigurationError{Key: "POSTMARK_SERVER_TOKEN", Reason: "is required"}
		}
		if c.Postmark.AccountToken == "" {
			return &models.ConfigurationError{Key: "POSTMARK_ACCOUNT_TOKEN", Reason: "is required"}
		}
		if c.SenderEmail() == "" {
			return &models.ConfigurationError{Key: "MAIL_FROM_EMAIL", Reason: "is required"}
		}
	default:
		return &models.ConfigurationError{Key: "MAIL_PROVIDER", Reason: fmt.Sprintf("unsupported value %q", c.Mail.Provider)}
	}

	if c.RabbitMQ.Enabled() {
		if c.RabbitMQ.PushQueueName == "" {
			return &models.ConfigurationError{Key: "PUSH_QUEUE_NAME", Reason: "is required when RABBITMQ_URI is set"}
		}
		if c.RabbitMQ.WorkerConcurrency <= 0 {
			return &models.ConfigurationError{Key: "WORKER_CONCURRENCY", Reason: "must be positive"}
		}
	}
	return nil
}

func (c *Config) validateFirebase() error {
	fb := c.Firebase
	if fb.ServiceAccountJSON != "" || fb.CredentialsPath != "" {
		return nil
	}
	if fb.ProjectID == "" && fb.ClientEmail == "" && fb.PrivateKey == "" {
		return &models.ConfigurationError{
			Key:    "FIREBASE_SERVICE_ACCOUNT_JSON",
			Reason: "firebase credentials are required (service account JSON, FIREBASE_PROJECT_ID/CLIENT_EMAIL/PRIVATE_KEY, or FCM_CREDENTIALS_PATH)",
		}
	}
	switch {
	case fb.ProjectID == "":
		return &models.ConfigurationError{Key: "FIREBASE_PROJECT_ID", Reason: "is required"}
	case fb.ClientEmail == "":
		return &models.ConfigurationError{Key: "FIREBASE_CLIENT_EMAIL", Reason: "is required"}
	case fb.PrivateKey == "":
		return &models.ConfigurationError{Key: "FIREBASE_PRIVATE_KEY", Reason: "is required"}
	}
	return nil
}
