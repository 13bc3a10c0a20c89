package configs

import (
	"errors"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App      `mapstructure:"app"`
	API      `mapstructure:"api"`
	Postgres `mapstructure:"postgres"`
	WhatsApp `mapstructure:"whatsapp"`
	Health   `mapstructure:"health"`
	Log      `mapstructure:"log"`
}

// App struct
type App struct {
	Debug bool   `mapstructure:"debug"`
	Env   string `mapstructure:"env"`
	Port  string `mapstructure:"port"`
}

// API struct
type API struct {
	Token string `mapstructure:"token"`
}

// Postgres struct
type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"database"`
	SSLMode  bool   `mapstructure:"sslmode"`
}

// WhatsApp struct
type WhatsApp struct {
	ClientName       string        `mapstructure:"client_name"`
	CountryCode      string        `mapstructure:"country_code"`
	TrunkPrefix      string        `mapstructure:"trunk_prefix"`
	DomainSuffix     string        `mapstructure:"domain_suffix"`
	ReadyTimeout     time.Duration `mapstructure:"ready_timeout"`
	WatchdogDelay    time.Duration `mapstructure:"watchdog_delay"`
	ReconnectDelay   time.Duration `mapstructure:"reconnect_delay"`
	QueriesPerSecond float64       `mapstructure:"queries_per_second"`
}

// Health struct - periodic report to the support phone
type Health struct {
	SupportPhone string        `mapstructure:"support_phone"`
	IntervalMS   int64         `mapstructure:"interval_ms"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
}

// Interval returns the report period
func (h Health) Interval() time.Duration {
	return time.Duration(h.IntervalMS) * time.Millisecond
}

// Log struct
type Log struct {
	Dir string `mapstructure:"dir"`
}

var config Config

// legacy environment names of earlier deployments
var envAliases = map[string]string{
	"app.port":             "PORT",
	"api.token":            "API_TOKEN",
	"whatsapp.client_name": "NAME_CLIENT",
	"health.support_phone": "SUPPORT_PHONE",
	"health.interval_ms":   "HEALTH_CHECK_INTERVAL",
}

// InitViper func
func InitViper(path, env string) {
	if err := getConfig(path, env); err != nil {
		logrus.Fatalln(err)
	}
}

// GetViper func
func GetViper() *Config {
	return &config
}

func setDefaults(v *viper.Viper, env string) {
	if env == "" {
		env = "dev"
	}
	v.SetDefault("app.debug", false)
	v.SetDefault("app.env", env)
	v.SetDefault("app.port", "3000")
	v.SetDefault("api.token", "")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.username", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "whatsapp_checker")
	v.SetDefault("postgres.sslmode", false)

	v.SetDefault("whatsapp.client_name", "default")
	v.SetDefault("whatsapp.country_code", "593")
	v.SetDefault("whatsapp.trunk_prefix", "0")
	v.SetDefault("whatsapp.domain_suffix", "@c.us")
	v.SetDefault("whatsapp.ready_timeout", 60*time.Second)
	v.SetDefault("whatsapp.watchdog_delay", 5*time.Second)
	v.SetDefault("whatsapp.reconnect_delay", 3*time.Second)
	v.SetDefault("whatsapp.queries_per_second", 0)

	v.SetDefault("health.support_phone", "")
	v.SetDefault("health.interval_ms", 3600000)
	v.SetDefault("health.initial_delay", 60*time.Second)

	v.SetDefault("log.dir", "")
}

func load(v *viper.Viper, path, env string) (Config, error) {
	var cfg Config

	setDefaults(v, env)
	v.SetConfigName("config")
	v.AddConfigPath(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		// the dotted name stays bound through AutomaticEnv; the alias wins when both are set
		if err := v.BindEnv(key, alias, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return cfg, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
		logrus.Infof("No config file in %s, using defaults and environment", path)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getConfig(path, env string) error {
	cfg, err := load(viper.GetViper(), path, env)
	if err != nil {
		return err
	}
	config = cfg

	if viper.ConfigFileUsed() != "" {
		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			logrus.Infof("Config file has changed: %s", e.Name)
		})
	}
	return nil
}
