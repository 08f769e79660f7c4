package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

// DynamoDBStore implements Store using AWS DynamoDB, one DynamoDB table per
// worksheet. Items carry the worksheet column names as attribute names.
type DynamoDBStore struct {
	client *dynamodb.Client
	config SourceConfig
	logger zerolog.Logger
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg SourceConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.DynamoMode == DynamoModeLocal {
		// LoadDefaultConfig probes the EC2 IMDS endpoint, which hangs when
		// static credentials are intended, so local clients are built directly.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.DynamoRegion,
			BaseEndpoint: aws.String(cfg.DynamoEndpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.DynamoRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger.With().Str("component", "dynamo_store").Logger(),
	}

	if cfg.DynamoMode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.DynamoMode)).
		Str("region", cfg.DynamoRegion).
		Msg("DynamoDB store initialized")

	return store, nil
}

// Fetch scans the whole DynamoDB table behind a worksheet
func (s *DynamoDBStore) Fetch(ctx context.Context, table types.TableName) (*types.Table, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	tableName := s.config.DynamoTables[string(table)]

	var items []map[string]interface{}
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("table", tableName).Msg("failed to scan table")
			return nil, unavailable(table, err)
		}

		var batch []map[string]interface{}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, unavailable(table, fmt.Errorf("failed to unmarshal items: %w", err))
		}
		items = append(items, batch...)
	}

	header, records := itemsToRecords(items)
	return types.NewTable(table, header, records), nil
}

// itemsToRecords flattens items into a header and string records. DynamoDB
// keeps no column order, so the header is the sorted union of attribute names.
func itemsToRecords(items []map[string]interface{}) ([]string, [][]string) {
	seen := make(map[string]bool)
	var header []string
	for _, item := range items {
		for k := range item {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)

	records := make([][]string, 0, len(items))
	for _, item := range items {
		record := make([]string, len(header))
		for i, col := range header {
			record[i] = attributeString(item[col])
		}
		records = append(records, record)
	}
	return header, records
}

func attributeString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
