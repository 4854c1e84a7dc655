package config

import (
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

type Config struct {
	App      App       `mapstructure:"app"`
	Server   Server    `mapstructure:"server"`
	Database Database  `mapstructure:"database"`
	Auth     Auth      `mapstructure:"auth"`
	Paths    Paths     `mapstructure:"paths"`
	Pipeline Pipeline  `mapstructure:"pipeline"`
	Backup   Backup    `mapstructure:"backup"`
	Queue    *RabbitMQ `mapstructure:"rabbitmq"`

	// Storage is non-nil when offsite backup copies are enabled.
	Storage     *minio.Client
	MinIOBucket string
}

type App struct {
	Environment string `mapstructure:"environment"`
	Host        string `mapstructure:"host"`
}

type Server struct {
	HttpPort string `mapstructure:"http_port"`
	Workers  int    `mapstructure:"workers"`
}

type Database struct {
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type Auth struct {
	AdminUsername     string        `mapstructure:"admin_username"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	SessionTimeout    time.Duration `mapstructure:"session_timeout"`
	CookieName        string        `mapstructure:"cookie_name"`
	CookieSecure      bool          `mapstructure:"cookie_secure"`
}

type Paths struct {
	UploadsDir   string `mapstructure:"uploads_dir"`
	OutputDir    string `mapstructure:"output_dir"`
	BackupsDir   string `mapstructure:"backups_dir"`
	TemplatesDir string `mapstructure:"templates_dir"`
}

type Pipeline struct {
	FFmpegBin         string        `mapstructure:"ffmpeg_bin"`
	FFmpegTimeout     time.Duration `mapstructure:"ffmpeg_timeout"`
	ArtifactRetention time.Duration `mapstructure:"artifact_retention"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
}

type Backup struct {
	MysqldumpBin string `mapstructure:"mysqldump_bin"`
	MysqlBin     string `mapstructure:"mysql_bin"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
}

type RabbitMQ struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Pass         string `mapstructure:"pass"`
	ExchangeName string `mapstructure:"exchange_name"`
	Kind         string `mapstructure:"kind"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("RWC")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if viper.GetBool("minio.enabled") {
		client, err := minio.New(viper.GetString("minio.url"), &minio.Options{
			Creds: credentials.NewStaticV4(
				viper.GetString("minio.access_id"),
				viper.GetString("minio.secret_access_key"),
				"",
			),
			Secure: viper.GetBool("minio.secure"),
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		cfg.Storage = client
		cfg.MinIOBucket = viper.GetString("minio.bucket")
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.http_port", "8080")
	viper.SetDefault("server.workers", 4)
	viper.SetDefault("auth.session_timeout", "30m")
	viper.SetDefault("auth.cookie_name", "rwc_session")
	viper.SetDefault("pipeline.ffmpeg_bin", "ffmpeg")
	viper.SetDefault("pipeline.ffmpeg_timeout", "10m")
	viper.SetDefault("pipeline.artifact_retention", "24h")
	viper.SetDefault("pipeline.sweep_interval", "1h")
	viper.SetDefault("backup.mysqldump_bin", "mysqldump")
	viper.SetDefault("backup.mysql_bin", "mysql")
	viper.SetDefault("backup.port", 3306)
	viper.SetDefault("paths.templates_dir", "web/templates")
	viper.SetDefault("rabbitmq.kind", "topic")
}
