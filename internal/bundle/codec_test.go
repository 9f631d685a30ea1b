package bundle

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"
)

func TestPhysicalTableDocument_RoundTrip(t *testing.T) {
	table := &types.PhysicalTableMemberRelationalTable{
		Value: types.RelationalTable{
			DataSourceArn: aws.String("arn:aws:quicksight:us-east-1:123456789012:datasource/src-1"),
			Name:          aws.String("orders"),
			Schema:        aws.String("public"),
			InputColumns: []types.InputColumn{
				{Name: aws.String("id"), Type: types.InputColumnDataTypeInteger},
				{Name: aws.String("total"), Type: types.InputColumnDataTypeDecimal},
			},
		},
	}

	doc, err := PhysicalTableFromSDK(table)
	if err != nil {
		t.Fatalf("PhysicalTableFromSDK() error = %v", err)
	}
	if doc.RelationalTable == nil {
		t.Fatal("expected RelationalTable member")
	}

	// Survives a JSON round trip.
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	var decoded PhysicalTableDocument
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}

	sdk, err := decoded.ToSDK()
	if err != nil {
		t.Fatalf("ToSDK() error = %v", err)
	}
	got, ok := sdk.(*types.PhysicalTableMemberRelationalTable)
	if !ok {
		t.Fatalf("ToSDK() returned %T, want relational table member", sdk)
	}
	if aws.ToString(got.Value.Name) != "orders" {
		t.Errorf("table name = %q, want orders", aws.ToString(got.Value.Name))
	}
	if len(got.Value.InputColumns) != 2 {
		t.Errorf("input columns = %d, want 2", len(got.Value.InputColumns))
	}
}

func TestPhysicalTableDocument_CustomSql(t *testing.T) {
	table := &types.PhysicalTableMemberCustomSql{
		Value: types.CustomSql{
			DataSourceArn: aws.String("arn:aws:quicksight:us-east-1:123456789012:datasource/src-2"),
			Name:          aws.String("revenue"),
			SqlQuery:      aws.String("select * from revenue"),
		},
	}

	doc, err := PhysicalTableFromSDK(table)
	if err != nil {
		t.Fatalf("PhysicalTableFromSDK() error = %v", err)
	}
	if doc.DataSourceARN() != "arn:aws:quicksight:us-east-1:123456789012:datasource/src-2" {
		t.Errorf("DataSourceARN() = %q", doc.DataSourceARN())
	}

	doc.SetDataSourceARN("arn:aws:quicksight:us-east-1:999999999999:datasource/src-2-copy")
	if doc.DataSourceARN() != "arn:aws:quicksight:us-east-1:999999999999:datasource/src-2-copy" {
		t.Errorf("SetDataSourceARN did not take effect: %q", doc.DataSourceARN())
	}
}

func TestPhysicalTableDocument_Empty(t *testing.T) {
	var doc PhysicalTableDocument
	if _, err := doc.ToSDK(); err == nil {
		t.Error("expected error for empty document")
	}
	if doc.DataSourceARN() != "" {
		t.Error("empty document should have no data source ARN")
	}
}

func TestLogicalTableDocument_RoundTrip(t *testing.T) {
	table := types.LogicalTable{
		Alias: aws.String("joined"),
		Source: &types.LogicalTableSource{
			PhysicalTableId: aws.String("pt-1"),
		},
		DataTransforms: []types.TransformOperation{
			&types.TransformOperationMemberProjectOperation{
				Value: types.ProjectOperation{ProjectedColumns: []string{"id", "total"}},
			},
			&types.TransformOperationMemberRenameColumnOperation{
				Value: types.RenameColumnOperation{
					ColumnName:    aws.String("total"),
					NewColumnName: aws.String("amount"),
				},
			},
		},
	}

	doc, err := LogicalTableFromSDK(table)
	if err != nil {
		t.Fatalf("LogicalTableFromSDK() error = %v", err)
	}
	if len(doc.DataTransforms) != 2 {
		t.Fatalf("transforms = %d, want 2", len(doc.DataTransforms))
	}

	back, err := doc.ToSDK()
	if err != nil {
		t.Fatalf("ToSDK() error = %v", err)
	}
	if aws.ToString(back.Alias) != "joined" {
		t.Errorf("alias = %q, want joined", aws.ToString(back.Alias))
	}
	if _, ok := back.DataTransforms[0].(*types.TransformOperationMemberProjectOperation); !ok {
		t.Errorf("first transform = %T, want project operation", back.DataTransforms[0])
	}
	if _, ok := back.DataTransforms[1].(*types.TransformOperationMemberRenameColumnOperation); !ok {
		t.Errorf("second transform = %T, want rename operation", back.DataTransforms[1])
	}
}

func TestDataSourceParametersDocument_RoundTrip(t *testing.T) {
	params := &types.DataSourceParametersMemberPostgreSqlParameters{
		Value: types.PostgreSqlParameters{
			Host:     aws.String("db.example.com"),
			Port:     aws.Int32(5432),
			Database: aws.String("analytics"),
		},
	}

	doc, err := DataSourceParametersFromSDK(params)
	if err != nil {
		t.Fatalf("DataSourceParametersFromSDK() error = %v", err)
	}
	if doc == nil || doc.PostgreSqlParameters == nil {
		t.Fatal("expected PostgreSql member")
	}

	back, err := doc.ToSDK()
	if err != nil {
		t.Fatalf("ToSDK() error = %v", err)
	}
	got, ok := back.(*types.DataSourceParametersMemberPostgreSqlParameters)
	if !ok {
		t.Fatalf("ToSDK() returned %T", back)
	}
	if aws.ToString(got.Value.Database) != "analytics" {
		t.Errorf("database = %q, want analytics", aws.ToString(got.Value.Database))
	}
}

func TestDataSourceParametersDocument_Nil(t *testing.T) {
	doc, err := DataSourceParametersFromSDK(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Error("nil parameters should yield nil document")
	}

	var nilDoc *DataSourceParametersDocument
	back, err := nilDoc.ToSDK()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != nil {
		t.Error("nil document should yield nil parameters")
	}
}

func TestDataSourceParametersDocument_EmptyIsError(t *testing.T) {
	doc := &DataSourceParametersDocument{}
	if _, err := doc.ToSDK(); err == nil {
		t.Error("expected error for document with no member set")
	}
}
