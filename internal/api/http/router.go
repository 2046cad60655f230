package http

import (
	"github.com/EternisAI/syshealth/internal/api/http/handler"
	"github.com/EternisAI/syshealth/internal/api/http/middleware"
	"github.com/EternisAI/syshealth/internal/metrics"
	"github.com/gin-gonic/gin"
)

type Services struct {
	DB       handler.Pinger
	Registry handler.MachineRegistry
	Metrics  *metrics.Metrics
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.DB)
	engine.GET("/health", healthHandler.Check)

	if srvs.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(srvs.Metrics.Handler()))
	}

	if srvs.Registry != nil {
		m := srvs.Metrics
		if m == nil {
			m = metrics.New()
		}
		machinesHandler := handler.NewMachinesHandler(srvs.Registry, m)
		engine.POST("/report", machinesHandler.Report)
		engine.GET("/machines", machinesHandler.ListMachines)
		engine.GET("/machines/:id", machinesHandler.GetMachine)
		engine.GET("/export.csv", machinesHandler.ExportCSV)
	}
}
