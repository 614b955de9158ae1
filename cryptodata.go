package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"cryptodata-api/internal/cli"
	"cryptodata-api/internal/config"
	"cryptodata-api/internal/errorx"
	"cryptodata-api/internal/handler"
	"cryptodata-api/internal/profiling"
	"cryptodata-api/internal/svc"
)

var configFile = flag.String("f", "etc/cryptodata.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	stopProfiling, err := profiling.Start(cfg.Profiling, cfg.Env)
	logx.Must(err)
	defer stopProfiling()

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	httpx.SetErrorHandlerCtx(errorx.Handler)

	ctx := svc.NewServiceContext(*cfg)
	defer ctx.Close()
	handler.RegisterHandlers(server, ctx)

	cli.LogConfigSummary(cfg)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
