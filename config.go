package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/avhal/scout/service"
	"github.com/avhal/scout/shared"
	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// Mode selects live or backtest execution.
	Mode string
	// Instruments represents the tracked instruments.
	Instruments []string
	// Timeframe is the candle timeframe granularity.
	Timeframe string
	// Strategies represents the configured strategy names, or "all".
	Strategies []string
	// OandaAPIKey is the OANDA API key.
	OandaAPIKey string
	// OandaEnv selects the practice or trade OANDA environment.
	OandaEnv string
	// WebhookURL is the alert webhook endpoint.
	WebhookURL string
	// StartDate is the inclusive backtest range start (ISO-8601).
	StartDate string
	// EndDate is the inclusive backtest range end (ISO-8601).
	EndDate string
	// DataFilepath is the filepath to offline candle data.
	DataFilepath string
	// ReportFilepath is the filepath to write the backtest report CSV to.
	ReportFilepath string
	// DBEndpoint represents the database connection endpoint.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Timeframe == "" {
		errs = errors.Join(errs, fmt.Errorf("timeframe cannot be an empty string"))
	} else {
		_, err := shared.ParseTimeframe(cfg.Timeframe)
		if err != nil {
			errs = errors.Join(errs, err)
		}
	}

	if len(cfg.Strategies) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no strategies provided for scout service"))
	}

	switch cfg.Mode {
	case service.LiveMode:
		if len(cfg.Instruments) == 0 {
			errs = errors.Join(errs, fmt.Errorf("no instruments provided for scout service"))
		}
		if cfg.OandaAPIKey == "" {
			errs = errors.Join(errs, fmt.Errorf("oanda api key cannot be an empty string"))
		}
	case service.BacktestMode:
		if len(cfg.Instruments) != 1 {
			errs = errors.Join(errs, fmt.Errorf("backtest requires exactly one instrument"))
		}
		if cfg.OandaAPIKey == "" && cfg.DataFilepath == "" {
			errs = errors.Join(errs, fmt.Errorf("backtest requires an oanda api key or a data filepath"))
		}

		start, err := time.Parse(shared.DateLayout, cfg.StartDate)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("parsing start date: %w", err))
		}
		end, err := time.Parse(shared.DateLayout, cfg.EndDate)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("parsing end date: %w", err))
		}
		if !start.IsZero() && !end.IsZero() && !start.Before(end) {
			errs = errors.Join(errs, fmt.Errorf("start date %s is not before end date %s",
				cfg.StartDate, cfg.EndDate))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown mode: %s", cfg.Mode))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(strings.ToUpper(name))
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("mode", &cfg.Mode, "the execution mode, live or backtest")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("instruments", &cfg.Instruments, "the tracked instruments")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("timeframe", &cfg.Timeframe, "the candle timeframe granularity")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("strategies", &cfg.Strategies, "the strategy names, or all")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("oandaapikey", &cfg.OandaAPIKey, "the OANDA api key")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("oandaenv", &cfg.OandaEnv, "the OANDA environment, practice or live")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("webhookurl", &cfg.WebhookURL, "the alert webhook url")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("startdate", &cfg.StartDate, "the backtest range start date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("enddate", &cfg.EndDate, "the backtest range end date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("datafilepath", &cfg.DataFilepath, "the offline candle data filepath")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("reportfilepath", &cfg.ReportFilepath, "the backtest report csv filepath")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbendpoint", &cfg.DBEndpoint, "the database connection endpoint")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbuser", &cfg.DBUser, "the database user")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbpass", &cfg.DBPass, "the database user pass")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	if cfg.Mode == "" {
		cfg.Mode = service.LiveMode
	}

	return cfg.Validate()
}
