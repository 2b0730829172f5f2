package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExportService uploads rendered report files to S3-compatible storage
type ExportService struct {
	s3Client *s3.S3
	bucket   string
}

// NewExportService creates a new export service from S3_ENDPOINT,
// S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET. Returns an error when the
// configuration is missing; exports are an optional feature.
func NewExportService() (*ExportService, error) {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucket := os.Getenv("S3_BUCKET")

	if accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("S3 configuration missing")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String("us-east-1"),
		Endpoint:         aws.String(endpoint),
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &ExportService{
		s3Client: s3.New(sess),
		bucket:   bucket,
	}, nil
}

// ExportProductsCSV renders a products report as CSV and uploads it.
// Returns the object key.
func (s *ExportService) ExportProductsCSV(report *ProductsReportResponse) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"rank", "product_id", "variant_code", "name", "brand", "ean",
		"units", "orders", "unique_customers", "repeat_customers",
		"repeat_purchase_rate", "revenue_" + report.BaseCurrency,
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range report.Products {
		record := []string{
			strconv.Itoa(p.Rank),
			p.Key.ProductID,
			p.Key.VariantCode,
			p.DisplayName,
			p.Brand,
			p.EAN,
			p.Units.String(),
			strconv.FormatInt(p.Orders, 10),
			strconv.FormatInt(p.UniqueCustomers, 10),
			strconv.FormatInt(p.RepeatCustomers, 10),
			strconv.FormatFloat(p.RepeatPurchaseRate, 'f', 4, 64),
			p.RevenueBase.String(),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}

	key := fmt.Sprintf("exports/products/%s_%s.csv", time.Now().Format("20060102T150405"), uuid.New().String()[:8])
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	log.Info().Str("key", key).Int("rows", len(report.Products)).Msg("Products report exported")
	return key, nil
}
