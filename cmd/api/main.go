package main

import (
	"fmt"
	"net/http"

	"github.com/payrollhq/payrun-backend-go/internal/config"
	appHTTP "github.com/payrollhq/payrun-backend-go/internal/handler/http"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/database"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/jwt"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/paycalc"
	"github.com/payrollhq/payrun-backend-go/internal/repository/postgresql"
	catalogService "github.com/payrollhq/payrun-backend-go/internal/service/catalog"
	payrunService "github.com/payrollhq/payrun-backend-go/internal/service/payrun"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	draftStore := postgresql.NewDraftStore(db)
	gateway := paycalc.NewClient(cfg.PayCalc)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	catalogSvc := catalogService.NewService(gateway, nil)
	adjustmentSvc := payrunService.NewAdjustmentService(draftStore, gateway)
	registrySvc := payrunService.NewRegistryService(gateway, adjustmentSvc, nil)
	previewSvc := payrunService.NewPreviewService(draftStore, gateway, nil)
	historySvc := payrunService.NewHistoryService(gateway)

	payrunHandler := appHTTP.NewPayrunHandler(registrySvc, adjustmentSvc, previewSvc, historySvc)
	catalogHandler := appHTTP.NewCatalogHandler(catalogSvc)

	router := appHTTP.NewRouter(
		JWTService,
		payrunHandler,
		catalogHandler,
		cfg.App.FrontendURL,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
