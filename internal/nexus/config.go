package nexus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ConfigError carries a stable code so callers can branch on the failing stage.
type ConfigError struct {
	Code    string
	Message string
	Field   string
	Cause   error
}

func (e ConfigError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field: %s)", e.Field)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeInvalidType   = "CONFIG_INVALID_TYPE"
	ErrCodeFileNotFound  = "CONFIG_FILE_NOT_FOUND"
	ErrCodeDotenv        = "CONFIG_DOTENV_FAILED"
	ErrCodeValidation    = "CONFIG_VALIDATION_FAILED"
	ErrCodeEnvironment   = "CONFIG_ENV_READ_FAILED"
	ErrCodeMerge         = "CONFIG_MERGE_FAILED"
	ErrCodeSecurityCheck = "CONFIG_SECURITY_CHECK_FAILED"
)

// Validator checks a fully loaded configuration.
type Validator interface {
	Validate(ctx context.Context, cfg interface{}) error
}

// SecurityChecker rejects configurations that would be unsafe to run.
type SecurityChecker interface {
	CheckSecurity(ctx context.Context, cfg interface{}) error
}

// Selfvalidating configs get their Validate method called after tag validation.
type selfValidating interface {
	Validate() error
}

// Environment lets a config tell the security checker whether it is a production config.
type Environment interface {
	IsProduction() bool
}

type LoaderOptions struct {
	DotenvFiles     []string
	FileName        string
	Defaults        interface{}
	Validator       Validator
	SecurityChecker SecurityChecker
	Timeout         time.Duration
}

// Loader reads configuration from dotenv files, an optional config file and the environment.
type Loader struct {
	options LoaderOptions
}

type LoaderOption func(*LoaderOptions)

// WithDotenv loads the given files into the process environment. Missing files are skipped
// and variables already set are never overwritten.
func WithDotenv(files ...string) LoaderOption {
	return func(o *LoaderOptions) {
		o.DotenvFiles = files
	}
}

// WithFileName reads a yaml, json, toml or env file before the environment.
func WithFileName(fileName string) LoaderOption {
	return func(o *LoaderOptions) {
		o.FileName = fileName
	}
}

// WithDefaults fills every zero field of the loaded config from defaults.
func WithDefaults(defaults interface{}) LoaderOption {
	return func(o *LoaderOptions) {
		o.Defaults = defaults
	}
}

func WithValidator(v Validator) LoaderOption {
	return func(o *LoaderOptions) {
		o.Validator = v
	}
}

func WithSecurityChecker(sc SecurityChecker) LoaderOption {
	return func(o *LoaderOptions) {
		o.SecurityChecker = sc
	}
}

func WithTimeout(timeout time.Duration) LoaderOption {
	return func(o *LoaderOptions) {
		o.Timeout = timeout
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	options := LoaderOptions{
		DotenvFiles:     []string{".env"},
		Validator:       &DefaultValidator{},
		SecurityChecker: &DefaultSecurityChecker{},
		Timeout:         10 * time.Second,
	}

	for _, opt := range opts {
		opt(&options)
	}

	return &Loader{options: options}
}

func (l *Loader) Load(cfg interface{}) error {
	return l.LoadWithContext(context.Background(), cfg)
}

func (l *Loader) LoadWithContext(ctx context.Context, cfg interface{}) error {
	if l.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.options.Timeout)
		defer cancel()
	}

	if err := validateInputType(cfg); err != nil {
		return err
	}

	if err := l.loadDotenv(); err != nil {
		return err
	}

	if err := l.read(cfg); err != nil {
		return err
	}

	if l.options.Defaults != nil {
		if err := mergo.Merge(cfg, l.options.Defaults); err != nil {
			return &ConfigError{Code: ErrCodeMerge, Message: "failed to merge defaults", Cause: err}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.options.SecurityChecker.CheckSecurity(ctx, cfg); err != nil {
		return &ConfigError{Code: ErrCodeSecurityCheck, Message: "security validation failed", Cause: err}
	}

	if err := l.options.Validator.Validate(ctx, cfg); err != nil {
		return &ConfigError{Code: ErrCodeValidation, Message: "configuration validation failed", Cause: err}
	}

	return nil
}

func validateInputType(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return &ConfigError{
			Code:    ErrCodeInvalidType,
			Message: fmt.Sprintf("configuration must be a pointer to struct, got %T", cfg),
		}
	}
	return nil
}

func (l *Loader) loadDotenv() error {
	for _, file := range l.options.DotenvFiles {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return &ConfigError{Code: ErrCodeDotenv, Message: "failed to load dotenv file", Field: file, Cause: err}
		}
	}
	return nil
}

// read lets cleanenv apply the file first and the environment on top.
func (l *Loader) read(cfg interface{}) error {
	if l.options.FileName != "" {
		if err := cleanenv.ReadConfig(l.options.FileName, cfg); err != nil {
			return &ConfigError{Code: ErrCodeFileNotFound, Message: "failed to read configuration file", Field: l.options.FileName, Cause: err}
		}
		return nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return &ConfigError{Code: ErrCodeEnvironment, Message: "failed to read environment variables", Cause: err}
	}
	return nil
}

// DefaultValidator runs go-playground struct tags, then Validate() on the config if present.
type DefaultValidator struct {
	validator *validator.Validate
}

func (v *DefaultValidator) Validate(_ context.Context, cfg interface{}) error {
	if v.validator == nil {
		v.validator = validator.New()
	}
	if err := v.validator.Struct(cfg); err != nil {
		return err
	}
	if sv, ok := cfg.(selfValidating); ok {
		return sv.Validate()
	}
	return nil
}

// DefaultSecurityChecker refuses obviously weak secrets, but only for production configs.
type DefaultSecurityChecker struct{}

var weakPatterns = []string{"password", "123456", "changeme", "secret", "test"}

var sensitiveNames = []string{"password", "secret", "key", "token", "credential"}

func (sc *DefaultSecurityChecker) CheckSecurity(_ context.Context, cfg interface{}) error {
	env, ok := cfg.(Environment)
	if !ok || !env.IsProduction() {
		return nil
	}
	return checkStruct(reflect.ValueOf(cfg).Elem(), "")
}

func checkStruct(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		meta := typ.Field(i)
		if !meta.IsExported() {
			continue
		}
		name := prefix + meta.Name

		switch field.Kind() {
		case reflect.Struct:
			if err := checkStruct(field, name+"."); err != nil {
				return err
			}
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				if err := checkStruct(field.Elem(), name+"."); err != nil {
					return err
				}
			}
		case reflect.String:
			if isSensitive(meta.Name) && isWeak(field.String()) {
				return &ConfigError{Code: ErrCodeSecurityCheck, Message: "sensitive field looks like a placeholder", Field: name}
			}
		}
	}
	return nil
}

func isSensitive(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, s := range sensitiveNames {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func isWeak(value string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	for _, p := range weakPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
