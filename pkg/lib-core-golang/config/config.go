package config

import (
	"context"
	"flag"
	"os"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/xts-bank/pkg/lib-core-golang/diag"
)

const (
	appEnvVar = "APP_ENV"
)

var logger = diag.CreateLogger()

// AppEnv represents app env
type AppEnv struct {
	// ServiceName is a name of a current service
	ServiceName string

	// Name is a env name. By default taken from APP_ENV
	Name string
}

type appEnvCfg struct {
	lookupFlag func(name string) *flag.Flag
}

type appEnvOpt func(*appEnvCfg)

func withLookupFlag(lookupFlag func(name string) *flag.Flag) appEnvOpt {
	return func(cfg *appEnvCfg) {
		cfg.lookupFlag = lookupFlag
	}
}

// NewAppEnv creates a new instance of the app env from os env
// Will use "dev" by default and "test" when running under go test
func NewAppEnv(serviceName string, opts ...appEnvOpt) AppEnv {
	cfg := appEnvCfg{
		lookupFlag: flag.Lookup,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	appEnv := os.Getenv(appEnvVar)
	if appEnv == "" {
		if v := cfg.lookupFlag("test.v"); v == nil {
			appEnv = "dev"
		} else {
			appEnv = "test"
		}
	}
	return AppEnv{
		Name:        appEnv,
		ServiceName: serviceName,
	}
}

// Source is an abstraction to read params
type Source interface {
	GetParameters(ctx context.Context, params []param) (map[param]interface{}, error)
}

// SourceFactory is a func that creates an instance of a source
type SourceFactory func() (Source, error)

// ServiceConfig holds loaded param values
type ServiceConfig interface {
	StringParam(p StringParam) StringVal
	IntParam(p IntParam) IntVal
}

type serviceConfig struct {
	values map[param]paramValue
}

func (cfg *serviceConfig) StringParam(p StringParam) StringVal {
	return cfg.values[p].(StringVal)
}

func (cfg *serviceConfig) IntParam(p IntParam) IntVal {
	return cfg.values[p].(IntVal)
}

// Builder is a tool to setup config
type Builder struct {
	appEnv         AppEnv
	paramsBuilders []*ParamsBuilder
}

// NewBuilder returns an instance of a config builder
func NewBuilder(appEnv AppEnv) *Builder {
	return &Builder{appEnv: appEnv}
}

// WithLocalSource creates a source factory for a local source
// that will point on configs dir
func (b *Builder) WithLocalSource() SourceFactory {
	return func() (Source, error) {
		return NewLocalSource(LocalOpts.WithAppEnv(b.appEnv))
	}
}

// NewParamsBuilder is a builder to build params bound to a given source
func (b *Builder) NewParamsBuilder(sourceFactory SourceFactory) *ParamsBuilder {
	pb := &ParamsBuilder{
		serviceName:   b.appEnv.ServiceName,
		sourceFactory: sourceFactory,
	}
	b.paramsBuilders = append(b.paramsBuilders, pb)
	return pb
}

// LoadConfig loads the config with sources and params built
func (b *Builder) LoadConfig() (ServiceConfig, error) {
	ctx := diag.ContextWithNewSessionID(context.Background())
	logger.Info(ctx, "Loading config values, env: %v", b.appEnv.Name)

	cfg := &serviceConfig{values: map[param]paramValue{}}
	for _, paramsBuilder := range b.paramsBuilders {
		source, err := paramsBuilder.sourceFactory()
		if err != nil {
			return nil, err
		}
		values, err := source.GetParameters(ctx, paramsBuilder.params)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to fetch param values")
		}
		logger.Debug(ctx, "Fetched %v (of %v requested) values", len(values), len(paramsBuilder.params))
		for _, sourceParam := range paramsBuilder.params {
			rawValue, ok := values[sourceParam]
			if !ok {
				return nil, errors.Errorf("Parameter %v not found", sourceParam)
			}
			value := sourceParam.emptyValue()
			if err := value.setValue(rawValue); err != nil {
				return nil, errors.Wrapf(err, "Failed to set parameter %v value", sourceParam)
			}
			cfg.values[sourceParam] = value
		}
	}
	return cfg, nil
}

// ParamsBuilder is a tool to build params bound to particular source
type ParamsBuilder struct {
	params        []param
	serviceName   string
	sourceFactory SourceFactory
}

// NewParam returns an instance of a param builder
func (b *ParamsBuilder) NewParam(key string) *ParamBuilder {
	return &ParamBuilder{paramKey: key, pb: b}
}

// ParamBuilder is a tool to build params
type ParamBuilder struct {
	paramKey string
	pb       *ParamsBuilder
}

// String creates an instance of a string param
func (b *ParamBuilder) String() StringParam {
	p := newStringParam(b.paramKey)
	b.pb.params = append(b.pb.params, p)
	return p
}

// Int creates an instance of an int param
func (b *ParamBuilder) Int() IntParam {
	p := newIntParam(b.paramKey)
	b.pb.params = append(b.pb.params, p)
	return p
}
