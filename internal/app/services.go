package app

import (
	"storepulse/internal/analytics"
	"storepulse/internal/repo"
	"storepulse/internal/services"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Services holds all application services
type Services struct {
	DB            *gorm.DB
	AnalyticsRepo *repo.AnalyticsRepository
	Converter     *analytics.Converter
	StatusPolicy  *analytics.StatusPolicy
	ReportService *services.ReportService
	ExportService *services.ExportService
}

// NewServices creates a new services container
func NewServices(db *gorm.DB) (*Services, error) {
	analyticsRepo := repo.NewAnalyticsRepository(db)

	converter, err := analytics.NewConverter(db)
	if err != nil {
		return nil, err
	}
	statusPolicy := analytics.NewStatusPolicyFromEnv()

	reportService := services.NewReportService(analyticsRepo, converter, statusPolicy)

	// Export storage is optional; reports still work without it
	exportService, err := services.NewExportService()
	if err != nil {
		log.Warn().Err(err).Msg("Export service not available")
		exportService = nil
	}

	return &Services{
		DB:            db,
		AnalyticsRepo: analyticsRepo,
		Converter:     converter,
		StatusPolicy:  statusPolicy,
		ReportService: reportService,
		ExportService: exportService,
	}, nil
}
