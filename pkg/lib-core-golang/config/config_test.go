package config

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"
)

type staticSource struct {
	values map[string]interface{}
}

func (s *staticSource) GetParameters(ctx context.Context, params []param) (map[param]interface{}, error) {
	values := map[param]interface{}{}
	for _, p := range params {
		if val, ok := s.values[p.key()]; ok {
			values[p] = val
		}
	}
	return values, nil
}

func TestNewAppEnv(t *testing.T) {
	type testCase struct {
		name   string
		setup  func(t *testing.T) appEnvOpt
		want   string
	}
	noTestFlag := func(name string) *flag.Flag { return nil }
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "defaults to dev",
				setup: func(t *testing.T) appEnvOpt {
					return withLookupFlag(noTestFlag)
				},
				want: "dev",
			}
		},
		func() testCase {
			return testCase{
				name: "test when running under go test",
				setup: func(t *testing.T) appEnvOpt {
					return withLookupFlag(flag.Lookup)
				},
				want: "test",
			}
		},
		func() testCase {
			envName := "env-" + faker.Word()
			return testCase{
				name: "taken from APP_ENV",
				setup: func(t *testing.T) appEnvOpt {
					os.Setenv(appEnvVar, envName)
					t.Cleanup(func() { os.Unsetenv(appEnvVar) })
					return withLookupFlag(noTestFlag)
				},
				want: envName,
			}
		},
	}
	for _, ttFn := range tests {
		tt := ttFn()
		t.Run(tt.name, func(t *testing.T) {
			opt := tt.setup(t)
			appEnv := NewAppEnv("svc-"+faker.Word(), opt)
			assert.Equal(t, tt.want, appEnv.Name)
		})
	}
}

func TestBuilder_LoadConfig(t *testing.T) {
	logLevel := faker.Word()
	port := 1024 + (os.Getpid() % 1024)

	source := &staticSource{values: map[string]interface{}{
		"log/logLevel": logLevel,
		"server/port":  float64(port),
	}}

	builder := NewBuilder(AppEnv{Name: "test", ServiceName: "svc-" + faker.Word()})
	params := builder.NewParamsBuilder(func() (Source, error) {
		return source, nil
	})

	logLevelParam := params.NewParam("log/logLevel").String()
	portParam := params.NewParam("server/port").Int()

	cfg, err := builder.LoadConfig()
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, logLevel, cfg.StringParam(logLevelParam).Value())
	assert.Equal(t, port, cfg.IntParam(portParam).Value())
}

func TestBuilder_LoadConfig_MissingParam(t *testing.T) {
	builder := NewBuilder(AppEnv{Name: "test"})
	params := builder.NewParamsBuilder(func() (Source, error) {
		return &staticSource{values: map[string]interface{}{}}, nil
	})
	params.NewParam("no/such-param").String()

	_, err := builder.LoadConfig()
	assert.Error(t, err)
}
