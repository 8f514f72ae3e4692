package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		WorkDir  string

		SendgridApiKey string
		RollbarToken   string
		AdminEmail     string

		Server   ServerConfig
		Database DatabaseConfig
		Dispatch DispatchConfig
		Grading  GradingConfig

		defaultFromEmail string
	}

	ServerConfig struct {
		Host            string
		Port            int
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	// DispatchConfig bounds the Dispatch Engine's retry behaviour.
	DispatchConfig struct {
		MaxAttempts  int
		RetryBackoff time.Duration
		SendTimeout  time.Duration // per recipient, all attempts included
	}

	GradingConfig struct {
		ScoreMax int // upper bound of the grading scale, inclusive
		Kinds    []string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "EduTrack")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("adminEmail", "")
	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseName", "edutrack")
	v.SetDefault("databaseUser", "edutrack")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseDisableTLS", true)
	v.SetDefault("dispatchMaxAttempts", 3)
	v.SetDefault("dispatchRetryBackoff", 500*time.Millisecond)
	v.SetDefault("dispatchSendTimeout", 30*time.Second)
	v.SetDefault("gradingScoreMax", 20)
	v.SetDefault("reportKinds", []string{"tabular", "printable"})

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		WorkDir:          wd,
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		AdminEmail:       v.GetString("adminEmail"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Port:            v.GetInt("serverPort"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("databaseEngine"),
			Host:       v.GetString("databaseHost"),
			Port:       v.GetString("databasePort"),
			Name:       v.GetString("databaseName"),
			User:       v.GetString("databaseUser"),
			Password:   v.GetString("databasePassword"),
			DisableTLS: v.GetBool("databaseDisableTLS"),
		},
		Dispatch: DispatchConfig{
			MaxAttempts:  v.GetInt("dispatchMaxAttempts"),
			RetryBackoff: v.GetDuration("dispatchRetryBackoff"),
			SendTimeout:  v.GetDuration("dispatchSendTimeout"),
		},
		Grading: GradingConfig{
			ScoreMax: v.GetInt("gradingScoreMax"),
			Kinds:    v.GetStringSlice("reportKinds"),
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, fmt.Sprint(c.Server.Port))
}

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, dc.Port)
}
