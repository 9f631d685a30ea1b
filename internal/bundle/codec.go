package bundle

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/quicksight/types"
)

// The QuickSight SDK models physical tables, dataset transforms, and data
// source parameters as Go interfaces (tagged unions), which do not survive
// encoding/json round trips. Each document type below flattens one union
// into a struct of optional members, matching the single-key object shape
// the QuickSight REST API itself uses on the wire. Exactly one member must
// be set; unknown members fail loudly instead of dropping data.

// PhysicalTableDocument is the serializable form of types.PhysicalTable.
type PhysicalTableDocument struct {
	RelationalTable *types.RelationalTable `json:"RelationalTable,omitempty" yaml:"RelationalTable,omitempty"`
	CustomSql       *types.CustomSql       `json:"CustomSql,omitempty" yaml:"CustomSql,omitempty"`
	S3Source        *types.S3Source        `json:"S3Source,omitempty" yaml:"S3Source,omitempty"`
}

// PhysicalTableFromSDK converts an SDK physical table union value.
func PhysicalTableFromSDK(table types.PhysicalTable) (PhysicalTableDocument, error) {
	switch v := table.(type) {
	case *types.PhysicalTableMemberRelationalTable:
		value := v.Value
		return PhysicalTableDocument{RelationalTable: &value}, nil
	case *types.PhysicalTableMemberCustomSql:
		value := v.Value
		return PhysicalTableDocument{CustomSql: &value}, nil
	case *types.PhysicalTableMemberS3Source:
		value := v.Value
		return PhysicalTableDocument{S3Source: &value}, nil
	default:
		return PhysicalTableDocument{}, fmt.Errorf("unsupported physical table type %T", table)
	}
}

// ToSDK converts the document back to the SDK union value.
func (d PhysicalTableDocument) ToSDK() (types.PhysicalTable, error) {
	switch {
	case d.RelationalTable != nil:
		return &types.PhysicalTableMemberRelationalTable{Value: *d.RelationalTable}, nil
	case d.CustomSql != nil:
		return &types.PhysicalTableMemberCustomSql{Value: *d.CustomSql}, nil
	case d.S3Source != nil:
		return &types.PhysicalTableMemberS3Source{Value: *d.S3Source}, nil
	default:
		return nil, fmt.Errorf("physical table document has no member set")
	}
}

// DataSourceARN returns the data source ARN the physical table reads from,
// or an empty string when no member is set.
func (d PhysicalTableDocument) DataSourceARN() string {
	switch {
	case d.RelationalTable != nil && d.RelationalTable.DataSourceArn != nil:
		return *d.RelationalTable.DataSourceArn
	case d.CustomSql != nil && d.CustomSql.DataSourceArn != nil:
		return *d.CustomSql.DataSourceArn
	case d.S3Source != nil && d.S3Source.DataSourceArn != nil:
		return *d.S3Source.DataSourceArn
	default:
		return ""
	}
}

// InputColumnCount returns the number of input columns declared on
// whichever member is set. The Create API rejects tables without columns.
func (d PhysicalTableDocument) InputColumnCount() int {
	switch {
	case d.RelationalTable != nil:
		return len(d.RelationalTable.InputColumns)
	case d.CustomSql != nil:
		return len(d.CustomSql.Columns)
	case d.S3Source != nil:
		return len(d.S3Source.InputColumns)
	default:
		return 0
	}
}

// Clone returns a copy whose member does not alias the receiver's, so the
// ARN can be rewritten without mutating the source document. Slices inside
// the member are still shared.
func (d PhysicalTableDocument) Clone() PhysicalTableDocument {
	var out PhysicalTableDocument
	switch {
	case d.RelationalTable != nil:
		v := *d.RelationalTable
		out.RelationalTable = &v
	case d.CustomSql != nil:
		v := *d.CustomSql
		out.CustomSql = &v
	case d.S3Source != nil:
		v := *d.S3Source
		out.S3Source = &v
	}
	return out
}

// SetDataSourceARN rewrites the data source ARN on whichever member is set.
func (d *PhysicalTableDocument) SetDataSourceARN(arn string) {
	switch {
	case d.RelationalTable != nil:
		d.RelationalTable.DataSourceArn = &arn
	case d.CustomSql != nil:
		d.CustomSql.DataSourceArn = &arn
	case d.S3Source != nil:
		d.S3Source.DataSourceArn = &arn
	}
}

// TransformOperationDocument is the serializable form of
// types.TransformOperation.
type TransformOperationDocument struct {
	CastColumnTypeOperation           *types.CastColumnTypeOperation           `json:"CastColumnTypeOperation,omitempty" yaml:"CastColumnTypeOperation,omitempty"`
	CreateColumnsOperation            *types.CreateColumnsOperation            `json:"CreateColumnsOperation,omitempty" yaml:"CreateColumnsOperation,omitempty"`
	FilterOperation                   *types.FilterOperation                   `json:"FilterOperation,omitempty" yaml:"FilterOperation,omitempty"`
	ProjectOperation                  *types.ProjectOperation                  `json:"ProjectOperation,omitempty" yaml:"ProjectOperation,omitempty"`
	RenameColumnOperation             *types.RenameColumnOperation             `json:"RenameColumnOperation,omitempty" yaml:"RenameColumnOperation,omitempty"`
	TagColumnOperation                *types.TagColumnOperation                `json:"TagColumnOperation,omitempty" yaml:"TagColumnOperation,omitempty"`
	UntagColumnOperation              *types.UntagColumnOperation              `json:"UntagColumnOperation,omitempty" yaml:"UntagColumnOperation,omitempty"`
	OverrideDatasetParameterOperation *types.OverrideDatasetParameterOperation `json:"OverrideDatasetParameterOperation,omitempty" yaml:"OverrideDatasetParameterOperation,omitempty"`
}

// TransformOperationFromSDK converts an SDK transform union value.
func TransformOperationFromSDK(op types.TransformOperation) (TransformOperationDocument, error) {
	switch v := op.(type) {
	case *types.TransformOperationMemberCastColumnTypeOperation:
		value := v.Value
		return TransformOperationDocument{CastColumnTypeOperation: &value}, nil
	case *types.TransformOperationMemberCreateColumnsOperation:
		value := v.Value
		return TransformOperationDocument{CreateColumnsOperation: &value}, nil
	case *types.TransformOperationMemberFilterOperation:
		value := v.Value
		return TransformOperationDocument{FilterOperation: &value}, nil
	case *types.TransformOperationMemberProjectOperation:
		value := v.Value
		return TransformOperationDocument{ProjectOperation: &value}, nil
	case *types.TransformOperationMemberRenameColumnOperation:
		value := v.Value
		return TransformOperationDocument{RenameColumnOperation: &value}, nil
	case *types.TransformOperationMemberTagColumnOperation:
		value := v.Value
		return TransformOperationDocument{TagColumnOperation: &value}, nil
	case *types.TransformOperationMemberUntagColumnOperation:
		value := v.Value
		return TransformOperationDocument{UntagColumnOperation: &value}, nil
	case *types.TransformOperationMemberOverrideDatasetParameterOperation:
		value := v.Value
		return TransformOperationDocument{OverrideDatasetParameterOperation: &value}, nil
	default:
		return TransformOperationDocument{}, fmt.Errorf("unsupported transform operation type %T", op)
	}
}

// ToSDK converts the document back to the SDK union value.
func (d TransformOperationDocument) ToSDK() (types.TransformOperation, error) {
	switch {
	case d.CastColumnTypeOperation != nil:
		return &types.TransformOperationMemberCastColumnTypeOperation{Value: *d.CastColumnTypeOperation}, nil
	case d.CreateColumnsOperation != nil:
		return &types.TransformOperationMemberCreateColumnsOperation{Value: *d.CreateColumnsOperation}, nil
	case d.FilterOperation != nil:
		return &types.TransformOperationMemberFilterOperation{Value: *d.FilterOperation}, nil
	case d.ProjectOperation != nil:
		return &types.TransformOperationMemberProjectOperation{Value: *d.ProjectOperation}, nil
	case d.RenameColumnOperation != nil:
		return &types.TransformOperationMemberRenameColumnOperation{Value: *d.RenameColumnOperation}, nil
	case d.TagColumnOperation != nil:
		return &types.TransformOperationMemberTagColumnOperation{Value: *d.TagColumnOperation}, nil
	case d.UntagColumnOperation != nil:
		return &types.TransformOperationMemberUntagColumnOperation{Value: *d.UntagColumnOperation}, nil
	case d.OverrideDatasetParameterOperation != nil:
		return &types.TransformOperationMemberOverrideDatasetParameterOperation{Value: *d.OverrideDatasetParameterOperation}, nil
	default:
		return nil, fmt.Errorf("transform operation document has no member set")
	}
}

// LogicalTableDocument is the serializable form of types.LogicalTable.
type LogicalTableDocument struct {
	Alias          *string                      `json:"Alias" yaml:"Alias"`
	Source         *types.LogicalTableSource    `json:"Source" yaml:"Source"`
	DataTransforms []TransformOperationDocument `json:"DataTransforms,omitempty" yaml:"DataTransforms,omitempty"`
}

// LogicalTableFromSDK converts an SDK logical table.
func LogicalTableFromSDK(table types.LogicalTable) (LogicalTableDocument, error) {
	doc := LogicalTableDocument{
		Alias:  table.Alias,
		Source: table.Source,
	}
	for _, op := range table.DataTransforms {
		opDoc, err := TransformOperationFromSDK(op)
		if err != nil {
			return LogicalTableDocument{}, err
		}
		doc.DataTransforms = append(doc.DataTransforms, opDoc)
	}
	return doc, nil
}

// ToSDK converts the document back to an SDK logical table.
func (d LogicalTableDocument) ToSDK() (types.LogicalTable, error) {
	table := types.LogicalTable{
		Alias:  d.Alias,
		Source: d.Source,
	}
	for _, opDoc := range d.DataTransforms {
		op, err := opDoc.ToSDK()
		if err != nil {
			return types.LogicalTable{}, err
		}
		table.DataTransforms = append(table.DataTransforms, op)
	}
	return table, nil
}

// DataSourceParametersDocument is the serializable form of
// types.DataSourceParameters, covering the relational and file-backed
// source kinds the sync pipeline supports.
type DataSourceParametersDocument struct {
	AthenaParameters           *types.AthenaParameters           `json:"AthenaParameters,omitempty" yaml:"AthenaParameters,omitempty"`
	AuroraParameters           *types.AuroraParameters           `json:"AuroraParameters,omitempty" yaml:"AuroraParameters,omitempty"`
	AuroraPostgreSqlParameters *types.AuroraPostgreSqlParameters `json:"AuroraPostgreSqlParameters,omitempty" yaml:"AuroraPostgreSqlParameters,omitempty"`
	MariaDbParameters          *types.MariaDbParameters          `json:"MariaDbParameters,omitempty" yaml:"MariaDbParameters,omitempty"`
	MySqlParameters            *types.MySqlParameters            `json:"MySqlParameters,omitempty" yaml:"MySqlParameters,omitempty"`
	OracleParameters           *types.OracleParameters           `json:"OracleParameters,omitempty" yaml:"OracleParameters,omitempty"`
	PostgreSqlParameters       *types.PostgreSqlParameters       `json:"PostgreSqlParameters,omitempty" yaml:"PostgreSqlParameters,omitempty"`
	RdsParameters              *types.RdsParameters              `json:"RdsParameters,omitempty" yaml:"RdsParameters,omitempty"`
	RedshiftParameters         *types.RedshiftParameters         `json:"RedshiftParameters,omitempty" yaml:"RedshiftParameters,omitempty"`
	S3Parameters               *types.S3Parameters               `json:"S3Parameters,omitempty" yaml:"S3Parameters,omitempty"`
	SnowflakeParameters        *types.SnowflakeParameters        `json:"SnowflakeParameters,omitempty" yaml:"SnowflakeParameters,omitempty"`
	SqlServerParameters        *types.SqlServerParameters        `json:"SqlServerParameters,omitempty" yaml:"SqlServerParameters,omitempty"`
}

// DataSourceParametersFromSDK converts an SDK data source parameters union
// value. A nil input yields a nil document (some source types, e.g. file
// uploads, carry no parameters).
func DataSourceParametersFromSDK(params types.DataSourceParameters) (*DataSourceParametersDocument, error) {
	if params == nil {
		return nil, nil
	}
	switch v := params.(type) {
	case *types.DataSourceParametersMemberAthenaParameters:
		value := v.Value
		return &DataSourceParametersDocument{AthenaParameters: &value}, nil
	case *types.DataSourceParametersMemberAuroraParameters:
		value := v.Value
		return &DataSourceParametersDocument{AuroraParameters: &value}, nil
	case *types.DataSourceParametersMemberAuroraPostgreSqlParameters:
		value := v.Value
		return &DataSourceParametersDocument{AuroraPostgreSqlParameters: &value}, nil
	case *types.DataSourceParametersMemberMariaDbParameters:
		value := v.Value
		return &DataSourceParametersDocument{MariaDbParameters: &value}, nil
	case *types.DataSourceParametersMemberMySqlParameters:
		value := v.Value
		return &DataSourceParametersDocument{MySqlParameters: &value}, nil
	case *types.DataSourceParametersMemberOracleParameters:
		value := v.Value
		return &DataSourceParametersDocument{OracleParameters: &value}, nil
	case *types.DataSourceParametersMemberPostgreSqlParameters:
		value := v.Value
		return &DataSourceParametersDocument{PostgreSqlParameters: &value}, nil
	case *types.DataSourceParametersMemberRdsParameters:
		value := v.Value
		return &DataSourceParametersDocument{RdsParameters: &value}, nil
	case *types.DataSourceParametersMemberRedshiftParameters:
		value := v.Value
		return &DataSourceParametersDocument{RedshiftParameters: &value}, nil
	case *types.DataSourceParametersMemberS3Parameters:
		value := v.Value
		return &DataSourceParametersDocument{S3Parameters: &value}, nil
	case *types.DataSourceParametersMemberSnowflakeParameters:
		value := v.Value
		return &DataSourceParametersDocument{SnowflakeParameters: &value}, nil
	case *types.DataSourceParametersMemberSqlServerParameters:
		value := v.Value
		return &DataSourceParametersDocument{SqlServerParameters: &value}, nil
	default:
		return nil, fmt.Errorf("unsupported data source parameters type %T", params)
	}
}

// ToSDK converts the document back to the SDK union value.
func (d *DataSourceParametersDocument) ToSDK() (types.DataSourceParameters, error) {
	if d == nil {
		return nil, nil
	}
	switch {
	case d.AthenaParameters != nil:
		return &types.DataSourceParametersMemberAthenaParameters{Value: *d.AthenaParameters}, nil
	case d.AuroraParameters != nil:
		return &types.DataSourceParametersMemberAuroraParameters{Value: *d.AuroraParameters}, nil
	case d.AuroraPostgreSqlParameters != nil:
		return &types.DataSourceParametersMemberAuroraPostgreSqlParameters{Value: *d.AuroraPostgreSqlParameters}, nil
	case d.MariaDbParameters != nil:
		return &types.DataSourceParametersMemberMariaDbParameters{Value: *d.MariaDbParameters}, nil
	case d.MySqlParameters != nil:
		return &types.DataSourceParametersMemberMySqlParameters{Value: *d.MySqlParameters}, nil
	case d.OracleParameters != nil:
		return &types.DataSourceParametersMemberOracleParameters{Value: *d.OracleParameters}, nil
	case d.PostgreSqlParameters != nil:
		return &types.DataSourceParametersMemberPostgreSqlParameters{Value: *d.PostgreSqlParameters}, nil
	case d.RdsParameters != nil:
		return &types.DataSourceParametersMemberRdsParameters{Value: *d.RdsParameters}, nil
	case d.RedshiftParameters != nil:
		return &types.DataSourceParametersMemberRedshiftParameters{Value: *d.RedshiftParameters}, nil
	case d.S3Parameters != nil:
		return &types.DataSourceParametersMemberS3Parameters{Value: *d.S3Parameters}, nil
	case d.SnowflakeParameters != nil:
		return &types.DataSourceParametersMemberSnowflakeParameters{Value: *d.SnowflakeParameters}, nil
	case d.SqlServerParameters != nil:
		return &types.DataSourceParametersMemberSqlServerParameters{Value: *d.SqlServerParameters}, nil
	default:
		return nil, fmt.Errorf("data source parameters document has no member set")
	}
}
