// Package profiling starts the continuous profiler when one is configured.
package profiling

import (
	"strings"

	"github.com/grafana/pyroscope-go"
	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/config"
)

// Start connects to the pyroscope server named in c. Without a server address
// it does nothing and the returned stop func is a no-op.
func Start(c config.ProfilingConf, env string) (stop func(), err error) {
	if strings.TrimSpace(c.ServerAddress) == "" {
		return func() {}, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: c.ApplicationName,
		ServerAddress:   c.ServerAddress,
		Tags: map[string]string{
			"env": env,
		},
		Logger: logger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, err
	}
	logx.Infof("profiling enabled, pushing to %s as %s", c.ServerAddress, c.ApplicationName)
	return func() { _ = profiler.Stop() }, nil
}

// logger routes profiler output through logx.
type logger struct{}

func (logger) Infof(format string, args ...any)  { logx.Debugf(format, args...) }
func (logger) Debugf(format string, args ...any) { logx.Debugf(format, args...) }
func (logger) Errorf(format string, args ...any) { logx.Errorf(format, args...) }
