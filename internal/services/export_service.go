package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories/interfaces"
	"referralhub/internal/utils"
	"referralhub/internal/validators"
	"referralhub/pkg/logger"
	"referralhub/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exportKindConversions = "conversions"

var conversionExportHeader = []string{
	"id", "campaign_id", "participant_id", "referral_link_id", "conversion_type",
	"conversion_value", "conversion_currency", "customer_email", "customer_name",
	"order_id", "status", "created_at",
}

type ExportService interface {
	// ExportConversions writes the org's conversions matching the request to
	// CSV, stores the file and returns a download URL.
	ExportConversions(ctx context.Context, orgID, requestedBy primitive.ObjectID, request *validators.ExportConversionsRequest) (*models.Export, error)
}

type exportService struct {
	conversionRepo interfaces.ConversionRepository
	exportRepo     interfaces.ExportRepository
	storage        storage.StorageProvider
	urlExpiry      time.Duration
	logger         *logger.Logger
}

func NewExportService(
	config *config.Config,
	conversionRepo interfaces.ConversionRepository,
	exportRepo interfaces.ExportRepository,
	storageProvider storage.StorageProvider,
	log *logger.Logger,
) ExportService {
	return &exportService{
		conversionRepo: conversionRepo,
		exportRepo:     exportRepo,
		storage:        storageProvider,
		urlExpiry:      time.Duration(config.Storage.URLExpiry) * time.Minute,
		logger:         log.WithField("service", "export"),
	}
}

func (s *exportService) ExportConversions(ctx context.Context, orgID, requestedBy primitive.ObjectID, request *validators.ExportConversionsRequest) (*models.Export, error) {
	if err := validators.Validate(request); err != nil {
		return nil, err
	}

	filter, err := exportFilter(orgID, request)
	if err != nil {
		return nil, err
	}

	conversions, err := s.conversionRepo.ListForExport(ctx, filter, utils.MaxExportRows)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	data, err := encodeConversionsCSV(conversions)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	key := utils.GenerateExportKey(fmt.Sprintf("exports/%s/%s", orgID.Hex(), exportKindConversions), "csv")
	if _, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      bytes.NewReader(data),
		ContentType: "text/csv",
		Size:        int64(len(data)),
		Metadata:    map[string]string{"org_id": orgID.Hex(), "kind": exportKindConversions},
	}); err != nil {
		s.logger.WithError(err).WithOrgID(orgID).Error("Failed to upload export")
		return nil, utils.NewInternalError(err)
	}

	url, err := s.storage.GetURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	export := &models.Export{
		OrgID:       orgID,
		RequestedBy: requestedBy,
		Kind:        exportKindConversions,
		StorageKey:  key,
		URL:         url,
		Rows:        len(conversions),
	}
	if err := s.exportRepo.Create(ctx, export); err != nil {
		return nil, utils.NewInternalError(err)
	}

	s.logger.WithOrgID(orgID).WithFields(map[string]interface{}{
		"export_id": export.ID.Hex(),
		"rows":      export.Rows,
	}).Info("Conversion export created")

	return export, nil
}

func exportFilter(orgID primitive.ObjectID, request *validators.ExportConversionsRequest) (interfaces.ConversionFilter, error) {
	filter := interfaces.ConversionFilter{
		OrgID:  orgID,
		Status: models.ConversionStatus(request.Status),
	}
	filter.CampaignID, _ = validators.ParseObjectID(request.CampaignID)

	if request.StartDate != "" {
		start, err := utils.ParseTimeParam(request.StartDate)
		if err != nil {
			return filter, utils.NewInvalidInputError("Invalid start_date")
		}
		filter.StartDate = &start
	}
	if request.EndDate != "" {
		end, err := utils.ParseTimeParam(request.EndDate)
		if err != nil {
			return filter, utils.NewInvalidInputError("Invalid end_date")
		}
		filter.EndDate = &end
	}

	return filter, nil
}

func encodeConversionsCSV(conversions []*models.Conversion) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(conversionExportHeader); err != nil {
		return nil, err
	}

	for _, c := range conversions {
		record := []string{
			c.ID.Hex(),
			c.CampaignID.Hex(),
			hexOrEmpty(c.ParticipantID),
			hexOrEmpty(c.ReferralLinkID),
			string(c.ConversionType),
			strconv.FormatFloat(c.Value, 'f', 2, 64),
			c.Currency,
			neutralizeCell(c.CustomerEmail),
			neutralizeCell(c.CustomerName),
			neutralizeCell(c.OrderID),
			string(c.Status),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// neutralizeCell prefixes caller-supplied text that a spreadsheet would
// evaluate as a formula.
func neutralizeCell(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + value
	}
	return value
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}
