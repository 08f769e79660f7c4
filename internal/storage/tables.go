package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dennisdiepolder/champkpi/internal/types"
	"github.com/rs/zerolog"
)

// tableKeys mirrors the natural key of each worksheet
var tableKeys = map[types.TableName][2]string{
	types.TableMonthly: {types.FieldEmployeeID, types.FieldMonth},
	types.TableDaily:   {types.FieldEmployeeID, types.FieldDate},
	types.TableCSAT:    {types.FieldEmployeeID, types.FieldWeek},
}

// CreateTablesIfNotExist creates DynamoDB tables for local development
func CreateTablesIfNotExist(ctx context.Context, client *dynamodb.Client, config SourceConfig, logger zerolog.Logger) error {
	for _, table := range types.AllTables {
		name := config.DynamoTables[string(table)]
		keys := tableKeys[table]

		_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(name),
		})
		if err == nil {
			logger.Info().Str("table", name).Msg("table already exists")
			continue
		}

		_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(name),
			KeySchema: []dbtypes.KeySchemaElement{
				{AttributeName: aws.String(keys[0]), KeyType: dbtypes.KeyTypeHash},
				{AttributeName: aws.String(keys[1]), KeyType: dbtypes.KeyTypeRange},
			},
			AttributeDefinitions: []dbtypes.AttributeDefinition{
				{AttributeName: aws.String(keys[0]), AttributeType: dbtypes.ScalarAttributeTypeS},
				{AttributeName: aws.String(keys[1]), AttributeType: dbtypes.ScalarAttributeTypeS},
			},
			BillingMode: dbtypes.BillingModePayPerRequest,
		})
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
		logger.Info().Str("table", name).Msg("table created")
	}

	return nil
}
